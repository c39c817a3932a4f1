// Package referral builds referral follow-up notifications and hands them to the relay.
package referral

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jmehdipour/workflow-relay/internal/model"
	"github.com/jmehdipour/workflow-relay/internal/relay"
	"github.com/shopspring/decimal"
)

const (
	DefaultTemplate = "medbuddy_referral_followup"
	DefaultFrom     = "Medbuddy <info@medbuddyafrica.com>"

	trackingPath = "/app/referrals"
	relayPath    = "send-mail"
)

type User struct {
	Name  string
	Email string
}

// Lead is a referred user signing up for a course.
type Lead struct {
	User       User
	CourseName string
}

type Settings struct {
	Template   string
	From       string
	WebsiteURL string
}

// Relayer is satisfied by *relay.Client.
type Relayer interface {
	Relay(ctx context.Context, path string, msg model.OutboundMessage, opts ...relay.CallOption) model.Result
}

// BuildFollowup composes the follow-up sent to user after lead signed up.
func BuildFollowup(s Settings, user User, lead Lead, currency string, amount decimal.Decimal) model.OutboundMessage {
	if s.Template == "" {
		s.Template = DefaultTemplate
	}
	if s.From == "" {
		s.From = DefaultFrom
	}

	return model.NewOutboundMessage(s.Template, user.Email, s.From, map[string]any{
		"user_first_name":            FirstName(user.Name),
		"referred_user_name":         lead.User.Name,
		"course_name":                lead.CourseName,
		"currency":                   currency,
		"referral_value":             json.Number(amount.String()),
		"referral_tracking_page_url": strings.TrimRight(s.WebsiteURL, "/") + trackingPath,
		"recipient":                  user.Email,
	})
}

// FirstName is the first whitespace-delimited token of name, or "".
func FirstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

type Notifier struct {
	relayer  Relayer
	settings Settings
}

func NewNotifier(r Relayer, s Settings) *Notifier {
	return &Notifier{relayer: r, settings: s}
}

// SendFollowup builds the follow-up and relays it; env may be empty.
func (n *Notifier) SendFollowup(ctx context.Context, user User, lead Lead, currency string, amount decimal.Decimal, env string) model.Result {
	msg := BuildFollowup(n.settings, user, lead, currency, amount)
	return n.relayer.Relay(ctx, relayPath, msg, relay.WithEnvironment(env))
}
