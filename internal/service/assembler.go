package service

import (
	"sort"

	"stockscope/internal/domain"
	"stockscope/internal/ta"
)

// smaDisplayPoints is how many trailing SMA triples the payload carries.
const smaDisplayPoints = 20

// RecentChronological returns the n most recent bars of series, oldest
// first. The input order does not matter and series is not modified.
func RecentChronological(series domain.PriceSeries, n int) []domain.DailyBar {
	if n <= 0 || len(series) == 0 {
		return []domain.DailyBar{}
	}
	sorted := make([]domain.DailyBar, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	if n < len(sorted) {
		sorted = sorted[:n]
	}
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted
}

func buildPriceHistory(symbol string, series domain.PriceSeries, days int) *domain.PriceHistory {
	bars := RecentChronological(series, days)
	return &domain.PriceHistory{
		Symbol:        symbol,
		DaysRequested: days,
		DaysReturned:  len(bars),
		Prices:        bars,
	}
}

func buildSMA(symbol string, series domain.PriceSeries, period, days int) *domain.SMAResult {
	bars := RecentChronological(series, days)
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	averages := ta.SMA(closes, period)

	start := max(len(bars)-smaDisplayPoints, 0)
	points := make([]domain.SMAPoint, 0, len(bars)-start)
	for i := start; i < len(bars); i++ {
		points = append(points, domain.SMAPoint{
			Date:  bars[i].Date,
			Price: bars[i].Close,
			SMA:   averages[i],
		})
	}
	return &domain.SMAResult{
		Symbol: symbol,
		Period: period,
		Days:   days,
		Data:   points,
	}
}
