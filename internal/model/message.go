package model

import (
	"maps"
	"strings"
)

// OutboundMessage is a templated notification handed to the workflow service.
// Build it with NewOutboundMessage; the context map is copied so callers
// cannot mutate a message after construction.
type OutboundMessage struct {
	Template string         `json:"template"`
	To       string         `json:"to"`
	From     string         `json:"from"`
	Context  map[string]any `json:"context"`
}

func NewOutboundMessage(template, to, from string, ctx map[string]any) OutboundMessage {
	return OutboundMessage{
		Template: template,
		To:       to,
		From:     from,
		Context:  maps.Clone(ctx),
	}
}

// Recipient is context["recipient"] when it is a non-empty string, otherwise To.
func (m OutboundMessage) Recipient() string {
	if v, ok := m.Context["recipient"].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return m.To
}

// Payload is the normalized body sent to the workflow service (and echoed on the stub path).
// Field order is the wire key order.
type Payload struct {
	Template    string         `json:"template"`
	To          string         `json:"to"`
	From        string         `json:"from"`
	Context     map[string]any `json:"context"`
	Recipient   string         `json:"recipient"`
	Environment string         `json:"environment"`
}

func (m OutboundMessage) Payload(env string) Payload {
	return Payload{
		Template:    m.Template,
		To:          m.To,
		From:        m.From,
		Context:     maps.Clone(m.Context),
		Recipient:   m.Recipient(),
		Environment: env,
	}
}
