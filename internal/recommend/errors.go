package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFailureMessage is shown when neither the backend nor the transport
// said anything useful.
const DefaultFailureMessage = "Failed to fetch recommendations"

// RequestError is a RequestFailed outcome: a transport failure, a non-2xx
// status, or a body that could not be decoded.
type RequestError struct {
	Op     string
	Status int    // 0 when no response was received
	Detail string // the backend's "detail" field, if any
	Err    error
}

func (e *RequestError) Error() string {
	msg := e.Message()
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Message is the text shown to the user: the backend detail, else the
// underlying error, else a generic fallback.
func (e *RequestError) Message() string {
	if d := strings.TrimSpace(e.Detail); d != "" {
		return d
	}
	if e.Err != nil {
		if m := strings.TrimSpace(e.Err.Error()); m != "" {
			return m
		}
	}
	return DefaultFailureMessage
}

// UserMessage turns any submission error into the message shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message()
	}
	if m := strings.TrimSpace(err.Error()); m != "" {
		return m
	}
	return DefaultFailureMessage
}
