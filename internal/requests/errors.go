package requests

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a query could not produce data
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindTransport
	KindService
	KindMalformed
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	case KindMalformed:
		return "malformed"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// User-facing messages
const (
	MsgNotConfigured = "API service is not configured. Please contact the administrator."
	MsgUnreachable   = "Unable to connect to service. Please check your internet connection."
	MsgServiceError  = "Service error occurred"
	MsgInvalidData   = "Invalid data received from API"
)

// missingKeyMarker is what the provider layer reports when its credential
// is absent
const missingKeyMarker = "FOOTBALL_API_KEY not found"

// Error is a classified failure of a remote query
type Error struct {
	Kind     Kind
	Function string
	Message  string // user-facing
	Err      error  // underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Function != "" {
		b.WriteString(e.Function)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " (%v)", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a classified error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message maps any error to the short string shown to users
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return defaultMessage(e.Kind)
	}
	return err.Error()
}

func defaultMessage(k Kind) string {
	switch k {
	case KindConfig:
		return MsgNotConfigured
	case KindTransport:
		return MsgUnreachable
	case KindMalformed, KindValidation:
		return MsgInvalidData
	default:
		return MsgServiceError
	}
}

// serviceError classifies a message reported by the remote side. A missing
// credential is a configuration problem rather than a service failure.
func serviceError(function, msg string) *Error {
	if strings.Contains(msg, missingKeyMarker) {
		return &Error{Kind: KindConfig, Function: function, Message: MsgNotConfigured, Err: errors.New(msg)}
	}
	if msg == "" {
		msg = MsgServiceError
	}
	return &Error{Kind: KindService, Function: function, Message: msg}
}
