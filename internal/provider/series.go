package provider

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"stockscope/internal/domain"
)

// ErrMalformedRecord marks a single daily row that could not be normalized.
// Such rows are logged and dropped; they never fail the whole series.
var ErrMalformedRecord = errors.New("malformed record")

// Keys historical data has been seen under, across both provider families.
var seriesKeys = []string{"historical", "Time Series (Daily)"}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05"}

type rawDay struct {
	date   string
	fields map[string]any
}

// extractSeries finds the historical payload inside body and normalizes it.
func extractSeries(symbol string, body any) (domain.PriceSeries, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, unexpectedShape(symbol, "no historical data found for %s", symbol)
	}
	raw, ok := lookup(m, seriesKeys...)
	if !ok {
		return nil, unexpectedShape(symbol, "no historical data found for %s", symbol)
	}
	return normalizeSeries(symbol, raw)
}

// normalizeSeries accepts either an object keyed by date or a list of
// day objects carrying a "date" field. Order of the result follows the list
// input; object input comes back newest first.
func normalizeSeries(symbol string, raw any) (domain.PriceSeries, error) {
	var days []rawDay
	switch v := raw.(type) {
	case map[string]any:
		days = make([]rawDay, 0, len(v))
		for date, item := range v {
			fields, _ := item.(map[string]any)
			days = append(days, rawDay{date: date, fields: fields})
		}
		sort.Slice(days, func(i, j int) bool { return days[i].date > days[j].date })
	case []any:
		days = make([]rawDay, 0, len(v))
		for _, item := range v {
			fields, _ := item.(map[string]any)
			date, _ := fields["date"].(string)
			days = append(days, rawDay{date: date, fields: fields})
		}
	default:
		return nil, unexpectedShape(symbol, "historical data for %s has unsupported type %T", symbol, raw)
	}

	if len(days) == 0 {
		return nil, unexpectedShape(symbol, "no historical data available for %s", symbol)
	}

	series := make(domain.PriceSeries, 0, len(days))
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		bar, err := parseDay(d)
		if err != nil {
			log.Printf("skipping %s daily record %q: %v", symbol, d.date, err)
			continue
		}
		if _, dup := seen[bar.Date]; dup {
			log.Printf("skipping duplicate %s daily record %s", symbol, bar.Date)
			continue
		}
		seen[bar.Date] = struct{}{}
		series = append(series, bar)
	}
	return series, nil
}

func parseDay(d rawDay) (domain.DailyBar, error) {
	if d.fields == nil {
		return domain.DailyBar{}, fmt.Errorf("%w: not an object", ErrMalformedRecord)
	}
	date, err := parseDate(d.date)
	if err != nil {
		return domain.DailyBar{}, err
	}

	closeVal, ok := lookup(d.fields, "close", "4. close")
	if !ok {
		return domain.DailyBar{}, fmt.Errorf("%w: missing close", ErrMalformedRecord)
	}
	closePrice, ok := toFloat(closeVal)
	if !ok {
		return domain.DailyBar{}, fmt.Errorf("%w: invalid close %v", ErrMalformedRecord, closeVal)
	}

	bar := domain.DailyBar{Date: date, Close: closePrice}
	optional := []struct {
		dst  *float64
		keys []string
	}{
		{&bar.Open, []string{"open", "1. open"}},
		{&bar.High, []string{"high", "2. high"}},
		{&bar.Low, []string{"low", "3. low"}},
	}
	for _, o := range optional {
		v, ok := lookup(d.fields, o.keys...)
		if !ok {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return domain.DailyBar{}, fmt.Errorf("%w: invalid %s %v", ErrMalformedRecord, o.keys[0], v)
		}
		*o.dst = f
	}

	if v, ok := lookup(d.fields, "volume", "5. volume"); ok {
		n, ok := toVolume(v)
		if !ok {
			return domain.DailyBar{}, fmt.Errorf("%w: invalid volume %v", ErrMalformedRecord, v)
		}
		bar.Volume = n
	}
	return bar, nil
}

func parseDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w: invalid date %q", ErrMalformedRecord, s)
}
