package ual

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrNotLoggedIn              = errors.New("not logged in")
	ErrAuthenticatorUnavailable = errors.New("authenticator unavailable")
)

// Code is an error code that providers send either as a JSON number or a
// JSON string.
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Code(n.String())
	return nil
}

// ErrorCause is the underlying reason a provider attaches to an Error.
type ErrorCause struct {
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
	Code      Code   `json:"code,omitempty"`
	ErrorCode Code   `json:"errorCode,omitempty"`
}

// Error is a provider failure with an optional nested cause.
type Error struct {
	Message string
	Cause   *ErrorCause
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "authenticator error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// CauseOf returns the nested cause of err, or nil.
func CauseOf(err error) *ErrorCause {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Cause
	}
	return nil
}

// String renders the cause for logs.
func (c *ErrorCause) String() string {
	if c == nil {
		return ""
	}
	var parts []string
	for _, s := range []string{c.Reason, c.Message, string(c.Code), string(c.ErrorCode)} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
