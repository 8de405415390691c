package provider

import (
	"net/url"
	"strings"

	"stockscope/internal/cache"
	"stockscope/internal/domain"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantageSource maps Alpha Vantage query-function responses.
type AlphaVantageSource struct {
	baseURL string
}

func NewAlphaVantageSource(baseURL string) *AlphaVantageSource {
	if baseURL == "" {
		baseURL = alphaVantageBaseURL
	}
	return &AlphaVantageSource{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *AlphaVantageSource) Name() string { return "alphavantage" }

func (s *AlphaVantageSource) Endpoint(kind cache.Kind, symbol string) string {
	function := "OVERVIEW"
	switch kind {
	case cache.KindQuote:
		function = "GLOBAL_QUOTE"
	case cache.KindDaily:
		function = "TIME_SERIES_DAILY"
	}
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	return s.baseURL + "?" + q.Encode()
}

// Response shape: {"Global Quote": {"01. symbol": "IBM", "05. price": "180.2", "10. change percent": "0.4321%", ...}}
func (s *AlphaVantageSource) ParseQuote(symbol string, body any) (*domain.Quote, error) {
	m, _ := body.(map[string]any)
	q, _ := m["Global Quote"].(map[string]any)
	if _, ok := q["01. symbol"]; !ok {
		return nil, unexpectedShape(symbol, "no quote data found for %s", symbol)
	}
	return &domain.Quote{
		Symbol:        textOr(q, symbol, "01. symbol"),
		Price:         floatOr(q, 0, "05. price"),
		Change:        textOr(q, "0", "09. change"),
		ChangePercent: percentOr(q, "0%", "10. change percent"),
		LastUpdated:   textOr(q, domain.UnknownTimestamp, "07. latest trading day"),
		Open:          floatOr(q, 0, "02. open"),
		High:          floatOr(q, 0, "03. high"),
		Low:           floatOr(q, 0, "04. low"),
		Volume:        volumeOr(q, 0, "06. volume"),
		PreviousClose: floatOr(q, 0, "08. previous close"),
	}, nil
}

// Response shape: {"Meta Data": {...}, "Time Series (Daily)": {"2024-01-02": {"1. open": "...", "4. close": "..."}}}
func (s *AlphaVantageSource) ParseSeries(symbol string, body any) (domain.PriceSeries, error) {
	return extractSeries(symbol, body)
}

// Response shape: {"Symbol": "IBM", "Name": "International Business Machines", "MarketCapitalization": "...", ...}
func (s *AlphaVantageSource) ParseProfile(symbol string, body any) (*domain.CompanyProfile, error) {
	p, ok := body.(map[string]any)
	if !ok {
		return nil, unexpectedShape(symbol, "no company profile data found for %s", symbol)
	}
	if _, ok := p["Symbol"]; !ok {
		return nil, unexpectedShape(symbol, "no company profile data found for %s", symbol)
	}
	return &domain.CompanyProfile{
		Symbol:      textOr(p, symbol, "Symbol"),
		Name:        profileField(p, "Name"),
		Exchange:    profileField(p, "Exchange"),
		Industry:    profileField(p, "Industry"),
		Sector:      profileField(p, "Sector"),
		CEO:         profileField(p, "CEO"),
		Website:     profileField(p, "OfficialSite"),
		Description: profileField(p, "Description"),
		Employees:   profileField(p, "FullTimeEmployees"),
		Country:     profileField(p, "Country"),
		IPODate:     profileField(p, "IPODate"),
		MarketCap:   profileField(p, "MarketCapitalization"),
	}, nil
}
