package core

import (
	"strings"
	"time"
)

const (
	isoLayout   = "2006-01-02"
	monthLayout = "2006-01"
	// Day and month may be written with one or two digits.
	brInputLayout  = "2/1/2006"
	brOutputLayout = "02/01/2006"
)

// MonthOf returns the YYYY-MM key for t.
func MonthOf(t time.Time) string {
	return t.Format(monthLayout)
}

// FirstOfMonth returns the first day of the month containing t.
func FirstOfMonth(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), 1)
}

// ParseMonth validates a YYYY-MM key.
func ParseMonth(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return "", ErrInvalidMonth
	}
	return MonthOf(t), nil
}

// ParseBRDate parses a day/month/year date as typed by the user.
func ParseBRDate(s string) (Date, error) {
	t, err := time.Parse(brInputLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// ParseISODate parses the persisted YYYY-MM-DD form.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// BR formats the date as DD/MM/YYYY.
func (d Date) BR() string {
	if d.IsZero() {
		return "—"
	}
	return d.Format(brOutputLayout)
}
