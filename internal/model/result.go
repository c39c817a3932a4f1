package model

import (
	"bytes"
	"encoding/json"
)

type ResultKind string

const (
	ResultQueued    ResultKind = "queued"
	ResultDelivered ResultKind = "delivered"
	ResultFailed    ResultKind = "failed"
)

func (k ResultKind) String() string { return string(k) }

type ErrorKind string

const (
	ErrorWorkflowFailed  ErrorKind = "workflow_failed"
	ErrorNetwork         ErrorKind = "network_error"
	ErrorInvalidResponse ErrorKind = "invalid_response"
	ErrorCircuitOpen     ErrorKind = "circuit_open"
	ErrorInvalidPayload  ErrorKind = "invalid_payload"
)

func (k ErrorKind) String() string { return string(k) }

// Result is the outcome of one relay call. Only the fields of Kind are set:
//   - queued:    ID, Environment, Echo
//   - delivered: Body
//   - failed:    Status (nil when no response was received), Error, Detail
type Result struct {
	Kind ResultKind

	ID          string
	Environment string
	Echo        *Payload

	Body json.RawMessage

	Status *int
	Error  ErrorKind
	Detail string
}

func Queued(id, env string, echo Payload) Result {
	return Result{Kind: ResultQueued, ID: id, Environment: env, Echo: &echo}
}

// Delivered wraps the workflow service response body; an empty body becomes {}.
func Delivered(body []byte) Result {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	return Result{Kind: ResultDelivered, Body: json.RawMessage(body)}
}

func Failed(status int, kind ErrorKind, detail string) Result {
	return Result{Kind: ResultFailed, Status: &status, Error: kind, Detail: detail}
}

// FailedNoResponse is a failure where the service never answered.
func FailedNoResponse(kind ErrorKind, detail string) Result {
	return Result{Kind: ResultFailed, Error: kind, Detail: detail}
}

// OK reports success. A delivered object body whose "ok" key is present and
// falsy (false, null, 0, "", [] or {}) counts as a failure; a missing key or
// a non-object body counts as success.
func (r Result) OK() bool {
	switch r.Kind {
	case ResultQueued:
		return true
	case ResultFailed:
		return false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Body, &fields); err != nil {
		return true
	}
	raw, ok := fields["ok"]
	if !ok {
		return true
	}
	return truthy(raw)
}

func truthy(raw json.RawMessage) bool {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return true
	}

	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

type queuedJSON struct {
	OK          bool     `json:"ok"`
	Queued      bool     `json:"queued"`
	Environment string   `json:"environment"`
	ID          string   `json:"id"`
	Echo        *Payload `json:"echo"`
}

type failedJSON struct {
	OK     bool      `json:"ok"`
	Status *int      `json:"status"`
	Error  ErrorKind `json:"error"`
	Detail string    `json:"detail"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ResultQueued:
		return json.Marshal(queuedJSON{
			OK:          true,
			Queued:      true,
			Environment: r.Environment,
			ID:          r.ID,
			Echo:        r.Echo,
		})
	case ResultDelivered:
		if len(r.Body) == 0 {
			return []byte("{}"), nil
		}
		return r.Body, nil
	default:
		return json.Marshal(failedJSON{
			Status: r.Status,
			Error:  r.Error,
			Detail: r.Detail,
		})
	}
}
