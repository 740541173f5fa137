package domain

import "time"

// Period is one half of a business day.
type Period string

const (
	PeriodMorning   Period = "MORNING"
	PeriodAfternoon Period = "AFTERNOON"
)

// Periods lists the periods in the order they are generated each day.
func Periods() []Period {
	return []Period{PeriodMorning, PeriodAfternoon}
}

// IsValid reports whether p is a known period.
func (p Period) IsValid() bool {
	return p == PeriodMorning || p == PeriodAfternoon
}

// Code is the suffix used in slot identifiers.
func (p Period) Code() string {
	if p == PeriodAfternoon {
		return "PM"
	}
	return "AM"
}

// Start is the offset from midnight at which the period begins.
func (p Period) Start() time.Duration {
	if p == PeriodAfternoon {
		return 14 * time.Hour
	}
	return 9 * time.Hour
}

// End is the offset from midnight at which the period ends.
func (p Period) End() time.Duration {
	if p == PeriodAfternoon {
		return 19 * time.Hour
	}
	return 14 * time.Hour
}

// DisplayRange renders the fixed range, e.g. "09:00 - 14:00".
func (p Period) DisplayRange() string {
	midnight := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	return midnight.Add(p.Start()).Format("15:04") + " - " + midnight.Add(p.End()).Format("15:04")
}
