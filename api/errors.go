package api

import (
	"encoding/json"
	"strings"
)

// ErrorKind discriminates failures at the API boundary so callers never
// have to sniff message strings.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindBackend    ErrorKind = "backend"
	KindNetwork    ErrorKind = "network"
)

// Error is the single error contract of the client. Message is always a
// human-readable string suitable for direct display.
type Error struct {
	Kind    ErrorKind
	Op      string // backend operation, e.g. "generate-persona"
	Message string
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Message
}

// NewValidationError builds a validation Error (detected locally, never
// sent to the network).
func NewValidationError(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// NormalizeErrorMessage extracts a display message from a backend error
// body. Strategies, in order: a structured JSON error body, a JSON object
// embedded in free text, the raw text itself, then the fallback.
func NormalizeErrorMessage(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	if msg := parseErrorJSON(raw); msg != "" {
		return msg
	}

	// Some gateways wrap the JSON error in prose; dig it out.
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			if msg := parseErrorJSON(raw[start : end+1]); msg != "" {
				return msg
			}
		}
	}

	// Plain text bodies are shown as-is unless they look like
	// unparseable JSON noise.
	if !strings.HasPrefix(raw, "{") && !strings.HasPrefix(raw, "[") {
		return raw
	}

	return fallback
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
}

// parseErrorJSON pulls a message out of the common error body shapes:
// {"error": "..."}, {"error": {"message": "..."}}, {"message": "..."}
// and {"msg": "..."}. Returns "" when nothing usable is found.
func parseErrorJSON(raw string) string {
	var body errorBody
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return ""
	}

	if len(body.Error) > 0 {
		var s string
		if err := json.Unmarshal(body.Error, &s); err == nil && s != "" {
			return s
		}

		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}

	if body.Message != "" {
		return body.Message
	}
	return body.Msg
}
