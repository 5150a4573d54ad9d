// Package gateway reads normalized incident records from files.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// JSONRecordReader decodes records in the canonical schema. The input is
// either a JSON array of records or an object with a "records" array.
//
// Decoding is lenient per field: numbers may be JSON numbers or numeric
// strings, and unparsable, non-finite or negative values are dropped. Dates
// accept YYYY-MM-DD or RFC3339; unparsable dates are dropped.
type JSONRecordReader struct{}

// NewJSONRecordReader creates a new reader instance.
func NewJSONRecordReader() *JSONRecordReader {
	return &JSONRecordReader{}
}

// ReadRecords reads and decodes the records file at path.
func (r *JSONRecordReader) ReadRecords(ctx context.Context, path string) ([]domain.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file %s: %w", path, err)
	}
	defer file.Close()

	records, err := r.Decode(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode records file %s: %w", path, err)
	}
	return records, nil
}

// Decode reads every record from src.
func (r *JSONRecordReader) Decode(ctx context.Context, src io.Reader) ([]domain.Record, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var raw []rawRecord
	if len(data) > 0 && data[0] == '{' {
		var wrapper struct {
			Records []rawRecord `json:"records"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		raw = wrapper.Records
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(raw))
	for i := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, raw[i].toDomain())
	}
	return records, nil
}

type rawRecord struct {
	ID             flexString    `json:"id"`
	Date           flexDate      `json:"date"`
	Location       string        `json:"location"`
	Headcount      *rawHeadcount `json:"headcount"`
	MonetaryAmount flexNumber    `json:"monetary_amount"`
	EventTypes     flexStrings   `json:"event_types"`
	Transport      string        `json:"transport"`
	Conditions     flexStrings   `json:"conditions"`
}

type rawHeadcount struct {
	Male   flexNumber `json:"male"`
	Female flexNumber `json:"female"`
	Kids   flexNumber `json:"kids"`
	Total  flexNumber `json:"total"`
}

func (r *rawRecord) toDomain() domain.Record {
	rec := domain.Record{
		ID:             string(r.ID),
		Date:           r.Date.d,
		Location:       r.Location,
		MonetaryAmount: r.MonetaryAmount.v,
		EventTypes:     r.EventTypes,
		Transport:      r.Transport,
		Conditions:     r.Conditions,
	}
	if h := r.Headcount; h != nil {
		rec.Headcount = &domain.Headcount{Male: h.Male.v, Female: h.Female.v, Kids: h.Kids.v, Total: h.Total.v}
	}
	return rec.Sanitize()
}

// flexNumber accepts a JSON number or numeric string. Anything else is absent.
type flexNumber struct{ v *float64 }

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	n.v = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var f float64
	if json.Unmarshal(data, &f) != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	n.v = &f
	return nil
}

// flexDate accepts an ISO date or RFC3339 string. Anything else is absent.
type flexDate struct{ d *domain.Date }

func (fd *flexDate) UnmarshalJSON(data []byte) error {
	fd.d = nil
	var s string
	if json.Unmarshal(data, &s) != nil {
		return nil
	}
	if d, err := domain.ParseDate(s); err == nil {
		fd.d = &d
	}
	return nil
}

// flexString accepts a string or a number, so numeric ids survive decoding.
type flexString string

func (fs *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fs = flexString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("record id must be a string or number: %w", err)
	}
	*fs = flexString(num.String())
	return nil
}

// flexStrings accepts a list of strings or a single string.
type flexStrings []string

func (fs *flexStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*fs = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*fs = []string{single}
		return nil
	}
	*fs = nil
	return nil
}
