package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jmehdipour/workflow-relay/internal/model"
	"github.com/jmehdipour/workflow-relay/internal/relay"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

// Relayer is satisfied by *relay.Client.
type Relayer interface {
	Relay(ctx context.Context, path string, msg model.OutboundMessage, opts ...relay.CallOption) model.Result
}

type sendMailReq struct {
	Template    string         `json:"template"`
	To          string         `json:"to"`
	From        string         `json:"from"`
	Context     map[string]any `json:"context"`
	Environment string         `json:"environment"` // optional
}

func sendMailHandler(r Relayer, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBody))
		if err != nil {
			return c.String(http.StatusBadRequest, "Invalid JSON")
		}

		req, err := decodeSendMail(body)
		if err != nil {
			return c.String(http.StatusBadRequest, "Invalid JSON")
		}

		msg := model.NewOutboundMessage(req.Template, req.To, req.From, req.Context)
		res := r.Relay(c.Request().Context(), "send-mail", msg, relay.WithEnvironment(req.Environment))

		status := http.StatusOK
		if !res.OK() {
			status = http.StatusBadRequest
			log.Warn("send-mail relay failed",
				zap.String("result", res.Kind.String()),
				zap.String("error", res.Error.String()),
				zap.String("template", req.Template),
			)
		}

		return c.JSON(status, res)
	}
}

var errNotObject = errors.New("body is not a JSON object")

// decodeSendMail keeps context numbers as json.Number so large integers reach
// the workflow service (and its signature) unchanged.
func decodeSendMail(body []byte) (sendMailReq, error) {
	var req sendMailReq
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return req, errNotObject
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return req, errors.New("trailing data after JSON object")
	}
	return req, nil
}
