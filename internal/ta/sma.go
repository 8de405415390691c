package ta

import (
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// SMA returns the simple moving average of prices over period, aligned with
// the input. Positions without a full trailing window are null. Means are
// rounded to two decimal places.
func SMA(prices []float64, period int) []null.Float {
	out := make([]null.Float, len(prices))
	if period < 1 {
		return out
	}

	divisor := decimal.NewFromInt(int64(period))
	sum := decimal.Zero
	for i, p := range prices {
		sum = sum.Add(decimal.NewFromFloat(p))
		if i >= period {
			sum = sum.Sub(decimal.NewFromFloat(prices[i-period]))
		}
		if i+1 < period {
			continue
		}
		out[i] = null.FloatFrom(sum.Div(divisor).Round(2).InexactFloat64())
	}
	return out
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
