package domain

import "github.com/guregu/null/v6"

// Sentinels used when the provider omits a field.
const (
	UnknownTimestamp = "Unknown"
	NotAvailable     = "N/A"
)

// Quote is the normalized latest-price view of a stock.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        string  `json:"change"`
	ChangePercent string  `json:"change_percent"`
	LastUpdated   string  `json:"last_updated"`
	Open          float64 `json:"open_price"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	PreviousClose float64 `json:"previous_close"`
}

// DailyBar is one trading day of OHLCV data. Date is formatted YYYY-MM-DD.
type DailyBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PriceSeries holds daily bars with unique dates. Order is whatever the
// provider returned; use the service assembler to get a chronological view.
type PriceSeries []DailyBar

// CompanyProfile fields are never empty; missing values carry NotAvailable.
type CompanyProfile struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"company_name"`
	Exchange    string `json:"exchange"`
	Industry    string `json:"industry"`
	Sector      string `json:"sector"`
	CEO         string `json:"ceo"`
	Website     string `json:"website"`
	Description string `json:"description"`
	Employees   string `json:"full_time_employees"`
	Country     string `json:"country"`
	IPODate     string `json:"ipo_date"`
	MarketCap   string `json:"market_cap"`
}

// PriceHistory is the paged daily price payload.
type PriceHistory struct {
	Symbol        string     `json:"symbol"`
	DaysRequested int        `json:"days_requested"`
	DaysReturned  int        `json:"days_returned"`
	Prices        []DailyBar `json:"prices"`
}

// SMAPoint pairs a close with its moving average. SMA is null until enough
// history exists for a full window.
type SMAPoint struct {
	Date  string     `json:"date"`
	Price float64    `json:"price"`
	SMA   null.Float `json:"sma"`
}

// SMAResult is the moving-average payload.
type SMAResult struct {
	Symbol string     `json:"symbol"`
	Period int        `json:"period"`
	Days   int        `json:"days"`
	Data   []SMAPoint `json:"data"`
}
