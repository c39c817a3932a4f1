package util

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string
func New() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewKey returns a lowercase ULID, used for ids and idempotency keys sent to the workflow service.
func NewKey() string {
	return strings.ToLower(New())
}
