package issue

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const layoutISO = "2006-01-02"

// Date is a calendar day. The zero value means "unset".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day, keeping the day as seen in t's
// location.
func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Day builds a Date from its components.
func Day(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(v string) (Date, error) {
	t, err := time.Parse(layoutISO, v)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

// MustDate parses the input and panics on error. Intended for tests/fixtures.
func MustDate(v string) Date {
	d, err := ParseDate(v)
	if err != nil {
		panic(err)
	}
	return d
}

// IsSet reports whether the date carries a value.
func (d Date) IsSet() bool {
	return !d.Time.IsZero()
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(then Date) bool {
	return d.Year() == then.Year() && d.YearDay() == then.YearDay()
}

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(then Date) bool {
	return d.Year() == then.Year() && d.Month() == then.Month()
}

// Before reports whether d is a strictly earlier day than then.
func (d Date) Before(then Date) bool {
	return d.Time.Before(then.Time)
}

// After reports whether d is a strictly later day than then.
func (d Date) After(then Date) bool {
	return d.Time.After(then.Time)
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// MonthStart returns the first day of the date's month.
func (d Date) MonthStart() Date {
	return Day(d.Year(), d.Month(), 1)
}

// NextMonth returns the first day of the following month.
func (d Date) NextMonth() Date {
	return d.MonthStart().addMonths(1)
}

// PrevMonth returns the first day of the previous month.
func (d Date) PrevMonth() Date {
	return d.MonthStart().addMonths(-1)
}

func (d Date) addMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, n, 0)}
}

func (d Date) String() string {
	if !d.IsSet() {
		return ""
	}
	return d.Format(layoutISO)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.IsSet() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*raw)
	if err != nil {
		// Accept full timestamps written by older tooling.
		t, terr := time.Parse(time.RFC3339, *raw)
		if terr != nil {
			return err
		}
		parsed = NewDate(t)
	}
	*d = parsed
	return nil
}

// MarshalYAML renders the date in ISO form.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML accepts "2006-01-02" scalars; null leaves the date unset.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("issue: date must be a scalar, got line %d", value.Line)
	}
	if value.Tag == "!!null" || value.Value == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
