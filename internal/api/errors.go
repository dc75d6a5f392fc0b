package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNetwork matches failures where no response arrived
	ErrNetwork = errors.New("backend unreachable")
	// ErrTimeout matches network failures caused by the request timeout
	ErrTimeout = errors.New("request timed out")
	// ErrUnauthorized matches a *StatusError with code 401
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse matches bodies that do not decode into the expected shape
	ErrMalformedResponse = errors.New("malformed response")
)

// NetworkError is returned when the request never produced a response
type NetworkError struct {
	Endpoint string
	Timeout  bool
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timed out: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: backend unreachable: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork || (e.Timeout && target == ErrTimeout)
}

// StatusError is a non-2xx response. Message is the server's human-readable detail.
type StatusError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API error: status %d: %s", e.Endpoint, e.Code, e.Message)
}

func (e *StatusError) Unauthorized() bool { return e.Code == http.StatusUnauthorized }

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Unauthorized()
}

// MalformedError wraps a decode or shape-validation failure
type MalformedError struct {
	Endpoint string
	Err      error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Endpoint, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedResponse }

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// UserMessage turns any client error into the one-line text shown to the user
func UserMessage(err error, fallback string) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.Is(err, ErrTimeout):
		return "The server took too long to respond. Please try again."
	case errors.Is(err, ErrNetwork):
		return "Cannot reach server. Is the backend running?"
	}
	return fallback
}

const maxMessageLen = 200

// errorMessage extracts FastAPI's {"detail": ...} from an error body.
// detail is either a string or a list of {"msg": ...} validation entries.
func errorMessage(code int, body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return http.StatusText(code)
	}
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen] + "..."
	}
	return msg
}
