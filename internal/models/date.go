package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the single representation every parsed date is rendered in.
const DateLayout = "2006-01-02"

// Date is a calendar date that remembers the source text when it could not be parsed.
type Date struct {
	Time time.Time
	Raw  string
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// RawDate keeps unparsable source text.
func RawDate(raw string) Date {
	return Date{Raw: raw}
}

func (d Date) Valid() bool {
	return !d.Time.IsZero()
}

func (d Date) String() string {
	if d.Valid() {
		return d.Time.Format(DateLayout)
	}
	return d.Raw
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() && d.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse(DateLayout, *s); err == nil {
		*d = NewDate(t)
		return nil
	}
	*d = RawDate(*s)
	return nil
}
