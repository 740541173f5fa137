package domain

import (
	"errors"
	"time"
)

// DefaultBusinessDays is how far ahead a fresh session looks.
const DefaultBusinessDays = 10

// ErrInvalidBusinessDays is returned for a non-positive day count.
var ErrInvalidBusinessDays = errors.New("business day count must be positive")

// GeneratePool seeds a pool with two slots per business day. Counting
// starts on the reference date itself and skips Saturdays and Sundays.
func GeneratePool(reference time.Time, businessDays int) (Pool, error) {
	if businessDays <= 0 {
		return Pool{}, ErrInvalidBusinessDays
	}

	cursor := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC)
	slots := make([]TimeSlot, 0, businessDays*len(Periods()))
	for days := 0; days < businessDays; cursor = cursor.AddDate(0, 0, 1) {
		if !IsBusinessDay(cursor) {
			continue
		}
		for _, period := range Periods() {
			slots = append(slots, newTimeSlot(cursor, period))
		}
		days++
	}

	return newPool(slots), nil
}

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
