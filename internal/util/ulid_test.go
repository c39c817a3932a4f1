package util

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	id := New()
	_, err := ulid.ParseStrict(id)
	require.NoError(t, err)
	require.NotEqual(t, id, New())
}

func TestNewKey(t *testing.T) {
	t.Parallel()

	k := NewKey()
	require.Len(t, k, ulid.EncodedSize)
	require.Equal(t, strings.ToLower(k), k)
}
