package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var rateLimitMarkers = []string{"limit", "exceeded", "upgrade"}

// Fields providers use to carry free-text status messages, checked in order.
var (
	signalFields = []string{"Error Message", "error", "message", "Note", "Information"}
	errorFields  = []string{"Error Message", "error", "Information"}
)

// decodeBody parses a provider body keeping numbers as json.Number so that
// large volumes and prices are not rounded before normalization.
func decodeBody(symbol string, body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, unexpectedShape(symbol, "invalid JSON from provider: %v", err)
	}
	return v, nil
}

// classify looks for status signals before any resource-specific decoding.
// Rate limits take priority over explicit errors; nil means the body should
// be handed to the resource parser.
func classify(symbol string, body any) *Error {
	switch v := body.(type) {
	case []any:
		if len(v) == 0 {
			return rateLimited(symbol, "empty response")
		}
	case map[string]any:
		if note, ok := textOf(v["Note"]); ok {
			return rateLimited(symbol, note)
		}
		for _, field := range signalFields {
			if text, ok := textOf(v[field]); ok && mentionsRateLimit(text) {
				return rateLimited(symbol, text)
			}
		}
		for _, field := range errorFields {
			if text, ok := textOf(v[field]); ok {
				return upstreamError(symbol, text)
			}
		}
	}
	return nil
}

// providerMessage returns the free-text "message" a body carries, if any.
func providerMessage(body any) (string, bool) {
	m, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	return textOf(m["message"])
}

func mentionsRateLimit(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	default:
		return fmt.Sprint(t), true
	}
}
