package provider

import (
	"fmt"
	"net/url"
	"strings"

	"stockscope/internal/cache"
	"stockscope/internal/domain"
)

// Source describes one upstream provider family: where each resource lives
// and how its success bodies map onto the domain schema. Parsers only see
// bodies that already passed classify, and report shape problems as
// *Error with KindUnexpectedShape.
type Source interface {
	Name() string
	Endpoint(kind cache.Kind, symbol string) string
	ParseQuote(symbol string, body any) (*domain.Quote, error)
	ParseSeries(symbol string, body any) (domain.PriceSeries, error)
	ParseProfile(symbol string, body any) (*domain.CompanyProfile, error)
}

// NewSource returns the source registered under name.
func NewSource(name, baseURL string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fmp":
		return NewFMPSource(baseURL), nil
	case "alphavantage", "alpha_vantage", "av":
		return NewAlphaVantageSource(baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", name)
	}
}

// withAPIKey appends the escaped apikey query parameter, respecting an
// existing query string.
func withAPIKey(rawURL, apiKey string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "apikey=" + url.QueryEscape(apiKey)
}

// firstObject returns the first element of a non-empty list when it is an
// object carrying field.
func firstObject(body any, field string) (map[string]any, bool) {
	list, ok := body.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	obj, ok := list[0].(map[string]any)
	if !ok {
		return nil, false
	}
	if _, ok := obj[field]; !ok {
		return nil, false
	}
	return obj, true
}
