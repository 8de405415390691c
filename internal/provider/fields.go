package provider

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"stockscope/internal/domain"

	"github.com/shopspring/decimal"
)

// lookup returns the first present, non-null value among keys.
func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// toFloat coerces provider numbers, which may arrive as JSON numbers or as
// numeric strings.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func floatOr(m map[string]any, def float64, keys ...string) float64 {
	v, ok := lookup(m, keys...)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// maxVolume is 2^63, the first float64 that no longer fits in an int64.
const maxVolume = float64(1 << 63)

// toVolume converts v to a non-negative int64, rejecting values that would
// overflow.
func toVolume(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok || f < 0 || f >= maxVolume {
		return 0, false
	}
	return int64(f), true
}

// volumeOr returns a non-negative integer volume.
func volumeOr(m map[string]any, def int64, keys ...string) int64 {
	v, ok := lookup(m, keys...)
	if !ok {
		return def
	}
	if n, ok := toVolume(v); ok {
		return n
	}
	return def
}

// textOr renders any scalar as text. Empty strings count as missing.
func textOr(m map[string]any, def string, keys ...string) string {
	v, ok := lookup(m, keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return def
		}
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// percentOr renders a change percentage rounded to two decimals, e.g
// "1.2345%" or 1.2345 both become "1.23%".
func percentOr(m map[string]any, def string, keys ...string) string {
	v, ok := lookup(m, keys...)
	if !ok {
		return def
	}
	if s, isStr := v.(string); isStr {
		v = strings.TrimSuffix(strings.TrimSpace(s), "%")
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return decimal.NewFromFloat(f).Round(2).String() + "%"
}

// timestampOr formats a unix-seconds timestamp as UTC. Zero counts as
// missing; non-numeric values are passed through as text.
func timestampOr(m map[string]any, def string, keys ...string) string {
	v, ok := lookup(m, keys...)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		if f == 0 {
			return def
		}
		return time.Unix(int64(f), 0).UTC().Format("2006-01-02 15:04:05") + " UTC"
	}
	return textOr(m, def, keys...)
}

func profileField(m map[string]any, keys ...string) string {
	return textOr(m, domain.NotAvailable, keys...)
}
