package provider

import (
	"fmt"
	"net/url"
	"strings"

	"stockscope/internal/cache"
	"stockscope/internal/domain"
)

const fmpBaseURL = "https://financialmodelingprep.com/api/v3"

// FMPSource maps Financial Modeling Prep v3 responses.
type FMPSource struct {
	baseURL string
}

func NewFMPSource(baseURL string) *FMPSource {
	if baseURL == "" {
		baseURL = fmpBaseURL
	}
	return &FMPSource{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *FMPSource) Name() string { return "fmp" }

func (s *FMPSource) Endpoint(kind cache.Kind, symbol string) string {
	sym := url.PathEscape(symbol)
	switch kind {
	case cache.KindQuote:
		return fmt.Sprintf("%s/quote/%s", s.baseURL, sym)
	case cache.KindDaily:
		return fmt.Sprintf("%s/historical-price-full/%s", s.baseURL, sym)
	default:
		return fmt.Sprintf("%s/profile/%s", s.baseURL, sym)
	}
}

// Response shape: [{"symbol": "AAPL", "price": 189.3, "changesPercentage": 1.234, "dayHigh": ...}]
func (s *FMPSource) ParseQuote(symbol string, body any) (*domain.Quote, error) {
	q, ok := firstObject(body, "symbol")
	if !ok {
		return nil, unexpectedShape(symbol, "no quote data found for %s", symbol)
	}
	return &domain.Quote{
		Symbol:        textOr(q, symbol, "symbol"),
		Price:         floatOr(q, 0, "price"),
		Change:        textOr(q, "0", "change"),
		ChangePercent: percentOr(q, "0%", "changesPercentage"),
		LastUpdated:   timestampOr(q, domain.UnknownTimestamp, "timestamp"),
		Open:          floatOr(q, 0, "open"),
		High:          floatOr(q, 0, "dayHigh"),
		Low:           floatOr(q, 0, "dayLow"),
		Volume:        volumeOr(q, 0, "volume"),
		PreviousClose: floatOr(q, 0, "previousClose"),
	}, nil
}

// Response shape: {"symbol": "AAPL", "historical": [{"date": "2024-01-02", "close": 185.6, ...}]}
func (s *FMPSource) ParseSeries(symbol string, body any) (domain.PriceSeries, error) {
	return extractSeries(symbol, body)
}

// Response shape: [{"symbol": "AAPL", "companyName": "Apple Inc.", "ceo": "Mr. Timothy D. Cook", ...}]
func (s *FMPSource) ParseProfile(symbol string, body any) (*domain.CompanyProfile, error) {
	p, ok := firstObject(body, "symbol")
	if !ok {
		return nil, unexpectedShape(symbol, "no company profile data found for %s", symbol)
	}
	return &domain.CompanyProfile{
		Symbol:      textOr(p, symbol, "symbol"),
		Name:        profileField(p, "companyName"),
		Exchange:    profileField(p, "exchange", "exchangeShortName"),
		Industry:    profileField(p, "industry"),
		Sector:      profileField(p, "sector"),
		CEO:         profileField(p, "ceo"),
		Website:     profileField(p, "website"),
		Description: profileField(p, "description"),
		Employees:   profileField(p, "fullTimeEmployees"),
		Country:     profileField(p, "country"),
		IPODate:     profileField(p, "ipoDate"),
		MarketCap:   profileField(p, "mktCap"),
	}, nil
}
