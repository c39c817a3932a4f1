package environment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		explicit string
		want     string
	}{
		{name: "explicit wins", cfg: Config{Configured: "production", Debug: true}, explicit: "canary", want: "canary"},
		{name: "configured override", cfg: Config{Configured: "production", Debug: true}, want: "production"},
		{name: "blank configured ignored", cfg: Config{Configured: "  ", Debug: true}, want: Staging},
		{name: "debug falls back to staging", cfg: Config{Debug: true}, want: Staging},
		{name: "no debug falls back to production", cfg: Config{}, want: Production},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, NewResolver(tt.cfg).Resolve(tt.explicit))
		})
	}
}

func TestEndpoint(t *testing.T) {
	t.Parallel()

	r := NewResolver(Config{
		BaseURL: "https://hooks.acme.io/",
		Routes: map[string]string{
			"production": "/api/workflows/send-mail",
			"Staging":    "/staging/send-mail",
		},
	})

	require.Equal(t, "https://hooks.acme.io/api/workflows/send-mail", r.Endpoint(Production))
	require.Equal(t, "https://hooks.acme.io/staging/send-mail", r.Endpoint(Staging))
	require.Equal(t, "https://hooks.acme.io/api/workflows/send-mail", r.Endpoint("qa"), "unmapped env uses production route")
}

func TestEndpoint_NoRoutes(t *testing.T) {
	t.Parallel()

	r := NewResolver(Config{BaseURL: "https://hooks.acme.io"})
	require.Equal(t, "https://hooks.acme.io"+DefaultRoute, r.Endpoint(Staging))
}

func TestConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "complete", cfg: Config{BaseURL: "https://hooks.acme.io", APIKey: "k", PlaceholderHost: "workflow.example.com"}, want: true},
		{name: "no base url", cfg: Config{APIKey: "k"}, want: false},
		{name: "placeholder base url", cfg: Config{BaseURL: "https://workflow.example.com", APIKey: "k", PlaceholderHost: "workflow.example.com"}, want: false},
		{name: "no api key", cfg: Config{BaseURL: "https://hooks.acme.io"}, want: false},
		{name: "blank api key", cfg: Config{BaseURL: "https://hooks.acme.io", APIKey: " "}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, NewResolver(tt.cfg).Configured())
		})
	}
}
