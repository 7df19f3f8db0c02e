package dashboard

import (
	"time"

	"bookstore-service/internal/models"
)

// TimeRange selects the aggregation window
type TimeRange string

const (
	RangeToday   TimeRange = "today"
	RangeWeek    TimeRange = "week"
	RangeAgoWeek TimeRange = "ago-week"
	RangeMonth   TimeRange = "month"
	RangeYear    TimeRange = "year"
)

// ParseTimeRange maps a selector to a TimeRange. Unknown values select today.
func ParseTimeRange(s string) TimeRange {
	switch r := TimeRange(s); r {
	case RangeToday, RangeWeek, RangeAgoWeek, RangeMonth, RangeYear:
		return r
	default:
		return RangeToday
	}
}

// Start returns the inclusive lower bound of the window ending at now
func (r TimeRange) Start(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch r {
	case RangeWeek:
		return midnight.AddDate(0, 0, -7)
	case RangeAgoWeek:
		return now.AddDate(0, 0, -7)
	case RangeMonth:
		return now.AddDate(0, 0, -30)
	case RangeYear:
		return now.AddDate(0, 0, -365)
	default:
		return midnight
	}
}

// FilterByTimeRange keeps transactions created on or after the window start
func FilterByTimeRange(txs []models.Transaction, r TimeRange, now time.Time) []models.Transaction {
	start := r.Start(now)

	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.CreatedAt.Before(start) {
			out = append(out, tx)
		}
	}
	return out
}
