// Package environment decides which deployment environment governs a relay
// call and maps it to the workflow service endpoint.
package environment

import (
	"strings"
)

const (
	Production = "production"
	Staging    = "staging"

	// DefaultRoute is used when the route table has no production entry.
	DefaultRoute = "/api/workflows/send-mail"
)

type Config struct {
	BaseURL         string
	APIKey          string
	Configured      string // process-wide environment override
	Debug           bool
	PlaceholderHost string
	Routes          map[string]string
}

// Resolver is read-only after construction and safe for concurrent use.
type Resolver struct {
	cfg Config
}

func NewResolver(cfg Config) *Resolver {
	routes := make(map[string]string, len(cfg.Routes))
	for env, route := range cfg.Routes {
		routes[strings.ToLower(env)] = route
	}
	cfg.Routes = routes
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)

	return &Resolver{cfg: cfg}
}

// Resolve returns explicit when given, else the configured environment,
// else staging in debug mode and production otherwise.
func (r *Resolver) Resolve(explicit string) string {
	if e := strings.TrimSpace(explicit); e != "" {
		return e
	}
	if e := strings.TrimSpace(r.cfg.Configured); e != "" {
		return e
	}
	if r.cfg.Debug {
		return Staging
	}
	return Production
}

// Route looks up the route for env, defaulting to the production route.
func (r *Resolver) Route(env string) string {
	if route, ok := r.cfg.Routes[strings.ToLower(env)]; ok {
		return route
	}
	if route, ok := r.cfg.Routes[Production]; ok {
		return route
	}
	return DefaultRoute
}

// Endpoint is the base URL without trailing slash joined with the env route.
func (r *Resolver) Endpoint(env string) string {
	return strings.TrimRight(r.cfg.BaseURL, "/") + r.Route(env)
}

// Configured reports whether real delivery is possible. It is false when the
// base URL is unset or still the placeholder host, or the API key is empty.
func (r *Resolver) Configured() bool {
	if r.cfg.BaseURL == "" || strings.TrimSpace(r.cfg.APIKey) == "" {
		return false
	}
	if h := r.cfg.PlaceholderHost; h != "" && strings.Contains(r.cfg.BaseURL, h) {
		return false
	}
	return true
}
