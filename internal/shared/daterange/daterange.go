package daterange

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidRange = errors.New("invalid date range")

// Range is a half-open [From, To) window. Nil bounds are open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Parse reads from/to query values. Each accepts RFC3339 or YYYY-MM-DD; a
// date-only "to" covers the whole day.
func Parse(from, to string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}

	var r Range
	if v := strings.TrimSpace(from); v != "" {
		t, _, err := parse(v, loc)
		if err != nil {
			return Range{}, ErrInvalidRange
		}
		r.From = &t
	}
	if v := strings.TrimSpace(to); v != "" {
		t, dateOnly, err := parse(v, loc)
		if err != nil {
			return Range{}, ErrInvalidRange
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Month returns [first day, first day of next month) of a "YYYY-MM" value.
func Month(v string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(v), loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return t, t.AddDate(0, 1, 0), nil
}

func parse(v string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, v, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t, false, err
}
