package billing

import (
	"time"

	"github.com/iliyamo/gym-membership-api/internal/ledger"
)

// Metric is one dashboard figure with its period-over-period delta.
type Metric struct {
	Current  int64   `json:"current"`
	Previous int64   `json:"previous"`
	DeltaPct float64 `json:"delta_pct"`
}

// NewMetric pairs a current and previous value with their delta.
func NewMetric(current, previous int64) Metric {
	return Metric{Current: current, Previous: previous, DeltaPct: PercentChange(current, previous)}
}

// PercentChange returns the percentage delta from previous to current.
// A zero previous period reports +100 when anything happened and 0
// when both periods are empty, so fresh deployments show sane numbers
// instead of dividing by zero.
func PercentChange(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// MonthWindows returns the half-open ranges [curFrom, curTo) and
// [prevFrom, prevTo) for the calendar month containing now and the
// month before it. curTo is the start of next month, so in-progress
// months compare their partial total against the full previous month.
func MonthWindows(now time.Time) (curFrom, curTo, prevFrom, prevTo time.Time) {
	y, m, _ := now.Date()
	curFrom = time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	curTo = ledger.AddMonths(curFrom, 1)
	prevFrom = ledger.AddMonths(curFrom, -1)
	prevTo = curFrom
	return
}
