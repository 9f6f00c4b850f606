package settlement

import (
	"errors"
	"time"
)

// EndOfDay is the interval-ending text for the interval that closes at
// midnight of the following day.
const EndOfDay = "2400"

func buildTimestamp(day, hhmm, dateFormat, timeFormat string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateFormat, day, loc)
	if err != nil {
		return time.Time{}, &ParseError{Field: "oper day", Value: day, Format: dateFormat, Err: err}
	}

	if hhmm == EndOfDay {
		return d.AddDate(0, 0, 1), nil
	}

	if hhmm == "" {
		return time.Time{}, &ParseError{Field: "interval ending", Value: hhmm, Format: timeFormat, Err: errors.New("empty value")}
	}

	t, err := time.Parse(timeFormat, hhmm)
	if err != nil {
		return time.Time{}, &ParseError{Field: "interval ending", Value: hhmm, Format: timeFormat, Err: err}
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}
