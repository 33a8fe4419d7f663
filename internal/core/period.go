package core

import (
	"strings"
	"time"
)

// Period is a named time window applied before aggregation.
type Period int

const (
	PeriodAll Period = iota
	PeriodLast7Days
	PeriodLast30Days
	PeriodCurrentMonth
	PeriodCurrentYear
)

var periodTokens = map[Period]string{
	PeriodAll:          "all",
	PeriodLast7Days:    "7days",
	PeriodLast30Days:   "30days",
	PeriodCurrentMonth: "month",
	PeriodCurrentYear:  "year",
}

// ParsePeriod maps a token to a Period. Unrecognized tokens select PeriodAll.
func ParsePeriod(token string) Period {
	t := strings.ToLower(strings.TrimSpace(token))
	for p, tok := range periodTokens {
		if tok == t {
			return p
		}
	}
	return PeriodAll
}

func (p Period) String() string {
	if tok, ok := periodTokens[p]; ok {
		return tok
	}
	return periodTokens[PeriodAll]
}

// Includes reports whether d falls inside the window ending on today.
func (p Period) Includes(d Date, today Date) bool {
	switch p {
	case PeriodLast7Days:
		return !d.Before(today.AddDate(0, 0, -7))
	case PeriodLast30Days:
		return !d.Before(today.AddDate(0, 0, -30))
	case PeriodCurrentMonth:
		return d.Year() == today.Year() && d.Month() == today.Month()
	case PeriodCurrentYear:
		return d.Year() == today.Year()
	default:
		return true
	}
}

// FilterByPeriod returns the entries inside p as seen from now. PeriodAll
// returns entries unchanged.
func FilterByPeriod(entries []WasteEntry, p Period, now time.Time) []WasteEntry {
	if p == PeriodAll {
		return entries
	}
	today := DateOf(now)
	out := make([]WasteEntry, 0, len(entries))
	for _, e := range entries {
		if p.Includes(e.Date, today) {
			out = append(out, e)
		}
	}
	return out
}
