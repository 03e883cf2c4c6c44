package insights

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// roundedMean returns sum/count rounded to places decimals. The float64
// quotient is rounded at its exact binary value with exact ties to even, so
// 107/40 (2.67499...) gives 2.67 and 13/4 (3.25) gives 3.2.
func roundedMean(sum int64, count int, places int32) float64 {
	if count == 0 {
		return 0
	}
	mean := float64(sum) / float64(count)
	f, err := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', int(places), 64), 64)
	if err != nil {
		return mean
	}
	return f
}

// bucketScore rounds a day average to a whole score, halves away from zero.
func bucketScore(avg float64) int {
	return int(decimal.NewFromFloat(avg).Round(0).IntPart())
}
