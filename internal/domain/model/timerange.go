package model

import (
	"strings"
	"time"

	"telegram-chat-stats/internal/domain"
)

// TimeRange is a named window, recomputed against "now" on every request.
type TimeRange string

const (
	RangeAll   TimeRange = "all"
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)

// FollowUpRanges is the set always offered next to a report, in button order.
var FollowUpRanges = []TimeRange{RangeDay, RangeWeek, RangeMonth, RangeAll}

func ParseRange(s string) (TimeRange, error) {
	switch r := TimeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeAll, RangeDay, RangeWeek, RangeMonth:
		return r, nil
	default:
		return "", domain.ErrInvalidRange
	}
}

// Start returns the inclusive lower bound of the window, or nil for RangeAll.
// The day window starts at midnight in now's location.
func (r TimeRange) Start(now time.Time) *time.Time {
	var from time.Time
	switch r {
	case RangeDay:
		y, m, d := now.Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case RangeWeek:
		from = now.AddDate(0, 0, -7)
	case RangeMonth:
		from = now.AddDate(0, -1, 0)
	default:
		return nil
	}
	return &from
}

func (r TimeRange) String() string { return string(r) }
