package service

import (
	"math"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
)

// quantityEpsilon is the magnitude below which a held quantity counts as closed.
const quantityEpsilon = 1e-9

// isZeroQuantity reports whether a position is effectively closed.
// Repeated buy/sell of fractional units leaves float residue, so an exact
// comparison with zero would keep valuing phantom positions.
func isZeroQuantity(q float64) bool {
	return math.Abs(q) < quantityEpsilon
}

// portfolioWeight returns value as percentage points of total, or zero when
// the total is not positive.
//
// Example:
//
//	portfolioWeight(600, 1000)  // returns 60
//	portfolioWeight(10, 0)      // returns 0
func portfolioWeight(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total * 100
}

// calendarDays returns the number of calendar days in [start, end], or zero
// when end is before start. Both bounds are truncated to the day. Unix seconds
// are used because time.Duration saturates after roughly 292 years.
func calendarDays(start, end time.Time) int {
	s, e := model.Day(start), model.Day(end)
	if e.Before(s) {
		return 0
	}
	return int((e.Unix()-s.Unix())/secondsPerDay) + 1
}

const secondsPerDay = 24 * 60 * 60
