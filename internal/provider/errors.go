package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a provider fetch produced no data.
type ErrorKind int

const (
	// KindRateLimited means the provider refused the call because of quota.
	KindRateLimited ErrorKind = iota + 1
	// KindUpstream means the provider explicitly reported an error, usually
	// an unknown symbol.
	KindUpstream
	// KindUnexpectedShape means the body did not match the resource schema.
	KindUnexpectedShape
	// KindNetwork means the HTTP call failed, timed out or returned a
	// failure status.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream_error"
	case KindUnexpectedShape:
		return "unexpected_shape"
	case KindNetwork:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by Client fetches.
type Error struct {
	Kind    ErrorKind
	Symbol  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Symbol, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

func rateLimited(symbol, detail string) *Error {
	msg := "provider rate limit reached, please try again later"
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return &Error{Kind: KindRateLimited, Symbol: symbol, Message: msg}
}

func upstreamError(symbol, detail string) *Error {
	return &Error{Kind: KindUpstream, Symbol: symbol, Message: "provider error: " + detail}
}

func unexpectedShape(symbol, format string, args ...any) *Error {
	return &Error{Kind: KindUnexpectedShape, Symbol: symbol, Message: fmt.Sprintf(format, args...)}
}

func networkFailure(symbol, msg string, err error) *Error {
	return &Error{Kind: KindNetwork, Symbol: symbol, Message: msg, Err: err}
}
