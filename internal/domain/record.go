// Package domain provides the core types for incident record linkage.
// It defines the normalized record schema, the aspect and weight vocabulary,
// linkage configuration, bucket and explanation results, and the operation
// contracts exchanged between the Temporal workflow and its activities.
//
// Every type here is created fresh for one linkage invocation and carries no
// identity across calls. Records are treated as immutable once handed to the
// engine; helpers return copies instead of mutating their receivers.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Date is a calendar date without a time-of-day component.
// Dates are stored at UTC midnight so day arithmetic is exact.
type Date struct {
	t time.Time
}

// NewDate constructs a Date from its calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date in the instant's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts ISO dates (2006-01-02) and RFC3339 timestamps.
// Timestamps are truncated to their calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("unparsable date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate that panics on error. Intended for fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether the date was never set.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns the date as a UTC midnight instant.
func (d Date) Time() time.Time { return d.t }

// String renders the date in ISO form so that lexical order equals chronological order.
func (d Date) String() string { return d.t.Format(time.DateOnly) }

// DaysBetween returns the absolute number of days separating two dates.
func (d Date) DaysBetween(other Date) float64 {
	return math.Abs(d.t.Sub(other.t).Hours()) / 24
}

// MarshalJSON encodes the date as an ISO string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO date or RFC3339 timestamp.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// HeadcountField names one component of a headcount.
type HeadcountField string

const (
	HeadcountMale   HeadcountField = "male"
	HeadcountFemale HeadcountField = "female"
	HeadcountKids   HeadcountField = "kids"
	HeadcountTotal  HeadcountField = "total"
)

// HeadcountFields lists the headcount components in vector order.
func HeadcountFields() []HeadcountField {
	return []HeadcountField{HeadcountMale, HeadcountFemale, HeadcountKids, HeadcountTotal}
}

// Headcount is the approximate number of people involved in an incident.
// Any field may be absent. Total, when absent, is derived from the sub-counts.
type Headcount struct {
	Male   *float64 `json:"male,omitempty"`
	Female *float64 `json:"female,omitempty"`
	Kids   *float64 `json:"kids,omitempty"`
	Total  *float64 `json:"total,omitempty"`
}

// IsEmpty reports whether no component is present.
func (h *Headcount) IsEmpty() bool {
	return h == nil || (h.Male == nil && h.Female == nil && h.Kids == nil && h.Total == nil)
}

// Field returns a component and whether it is present.
// Total is derived as male+female+kids when not reported directly,
// and is absent only when all three sub-counts are absent too.
func (h *Headcount) Field(f HeadcountField) (float64, bool) {
	if h == nil {
		return 0, false
	}
	switch f {
	case HeadcountMale:
		return deref(h.Male)
	case HeadcountFemale:
		return deref(h.Female)
	case HeadcountKids:
		return deref(h.Kids)
	case HeadcountTotal:
		if h.Total != nil {
			return *h.Total, true
		}
		if h.Male == nil && h.Female == nil && h.Kids == nil {
			return 0, false
		}
		var sum float64
		for _, p := range []*float64{h.Male, h.Female, h.Kids} {
			if p != nil {
				sum += *p
			}
		}
		return sum, true
	}
	return 0, false
}

// Vector returns [male, female, kids, total] with absent components as 0.
func (h *Headcount) Vector() [4]float64 {
	var v [4]float64
	for i, f := range HeadcountFields() {
		v[i], _ = h.Field(f)
	}
	return v
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Float returns a pointer to v. Handy for optional numeric fields.
func Float(v float64) *float64 { return &v }

// Record is one normalized incident report contributed by a reporter.
// Field-name reconciliation happens upstream; the engine only sees this schema.
type Record struct {
	// ID is unique within a batch and is the only identity used by the engine.
	ID string `json:"id" validate:"required"`

	// Date is the calendar date of the incident.
	Date *Date `json:"date,omitempty"`

	// Location is free text, conventionally "place, region, country".
	Location string `json:"location,omitempty"`

	// Headcount holds the approximate number of people involved.
	Headcount *Headcount `json:"headcount,omitempty"`

	// MonetaryAmount is a non-negative amount such as a ransom demand.
	MonetaryAmount *float64 `json:"monetary_amount,omitempty"`

	// EventTypes is the set of incident categories.
	EventTypes []string `json:"event_types,omitempty"`

	// Transport is the mode of transport involved.
	Transport string `json:"transport,omitempty"`

	// Conditions is the set of reported conditions.
	Conditions []string `json:"conditions,omitempty"`
}

// Sanitize returns a copy of the record in which non-finite or negative
// numbers are absent, attribute strings are trimmed, and blank set members are
// dropped. The id is kept exactly as given. Sanitizing never fails; malformed
// values simply disappear.
func (r Record) Sanitize() Record {
	out := Record{
		ID:             r.ID,
		Location:       strings.TrimSpace(r.Location),
		Transport:      strings.TrimSpace(r.Transport),
		MonetaryAmount: sanitizeNumber(r.MonetaryAmount),
		EventTypes:     trimSet(r.EventTypes),
		Conditions:     trimSet(r.Conditions),
	}
	if r.Date != nil && !r.Date.IsZero() {
		d := *r.Date
		out.Date = &d
	}
	if r.Headcount != nil {
		h := &Headcount{
			Male:   sanitizeNumber(r.Headcount.Male),
			Female: sanitizeNumber(r.Headcount.Female),
			Kids:   sanitizeNumber(r.Headcount.Kids),
			Total:  sanitizeNumber(r.Headcount.Total),
		}
		if !h.IsEmpty() {
			out.Headcount = h
		}
	}
	return out
}

// SanitizeRecords returns sanitized copies of every record in input order.
func SanitizeRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Sanitize()
	}
	return out
}

// HasHeadcount reports whether any headcount component is present.
func (r Record) HasHeadcount() bool { return !r.Headcount.IsEmpty() }

func sanitizeNumber(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

func trimSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
