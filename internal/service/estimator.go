package service

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
)

// confirmationWindow is how far an announced ex-dividend date may be from a
// historical entry for that entry's amount to count as confirmed.
const confirmationWindow = 7 * 24 * time.Hour

// Estimate is the outcome of EstimateDividend for one instrument.
// Amount is in the instrument's dividend currency, not converted.
type Estimate struct {
	ExDate      time.Time
	Amount      float64
	IsEstimated bool
}

// EstimateDividend determines the next relevant ex-dividend date and the
// per-share amount for an instrument.
//
// Rules, in order:
//   - No history: no estimate.
//   - Announced date after today: confirmed when a historical entry lies within
//     seven days of it, otherwise estimated with the latest amount.
//   - Otherwise the next date is projected from the last entry plus the mean
//     gap between entries (truncated to whole days); at least two entries are
//     needed and the projection must fall after today.
//
// Parameters:
//   - history: Dividend events sorted by date ascending
//   - announced: Announced ex-dividend date, nil when unknown
//   - today: Calendar day of the run, midnight UTC
//
// Returns the estimate and true, or false when nothing can be determined.
func EstimateDividend(history []model.DividendEvent, announced *time.Time, today time.Time) (Estimate, bool) {
	if len(history) == 0 {
		return Estimate{}, false
	}
	latest := history[len(history)-1]

	if announced != nil && announced.After(today) {
		for _, e := range history {
			if withinWindow(e.Date, *announced) {
				return Estimate{ExDate: *announced, Amount: e.Amount, IsEstimated: false}, true
			}
		}
		return Estimate{ExDate: *announced, Amount: latest.Amount, IsEstimated: true}, true
	}

	if len(history) < 2 {
		return Estimate{}, false
	}

	projected := latest.Date.AddDate(0, 0, meanGapDays(history))
	if !projected.After(today) {
		return Estimate{}, false
	}
	return Estimate{ExDate: projected, Amount: latest.Amount, IsEstimated: true}, true
}

// meanGapDays returns the mean number of days between consecutive entries,
// truncated toward zero.
func meanGapDays(history []model.DividendEvent) int {
	gaps := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		gaps = append(gaps, float64(daysBetween(history[i-1].Date, history[i].Date)))
	}
	return int(stat.Mean(gaps, nil))
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func withinWindow(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= confirmationWindow
}
