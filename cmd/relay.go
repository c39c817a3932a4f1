package cmd

import (
	"github.com/jmehdipour/workflow-relay/internal/config"
	"github.com/jmehdipour/workflow-relay/internal/environment"
	"github.com/jmehdipour/workflow-relay/internal/relay"
	"go.uber.org/zap"
)

func newRelayClient(cfg config.Config, log *zap.Logger) *relay.Client {
	wf := cfg.Workflow

	resolver := environment.NewResolver(environment.Config{
		BaseURL:         wf.BaseURL,
		APIKey:          wf.APIKey,
		Configured:      wf.Environment,
		Debug:           wf.Debug,
		PlaceholderHost: wf.PlaceholderHost,
		Routes:          wf.Routes,
	})

	return relay.NewClient(relay.Config{
		APIKey:           wf.APIKey,
		WebhookSecret:    wf.WebhookSecret,
		Timeout:          wf.Timeout,
		Retries:          wf.Retries,
		InitialBackoff:   wf.InitialBackoff,
		BreakerThreshold: wf.Breaker.FailThreshold,
		BreakerOpenFor:   wf.Breaker.OpenFor,
	}, resolver, log.Named("relay"))
}
