package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date layout used for form input and display.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when reading a stored date.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, DateLayout}

// ErrEmptyDate indicates a stored date string was empty.
var ErrEmptyDate = errors.New("contact: empty date")

// DateError reports a stored date that could not be parsed and was replaced
// with the fallback value.
type DateError struct {
	ID  string
	Raw string
	Err error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("contact: record %q: unparseable date %q: %v", e.ID, e.Raw, e.Err)
}

func (e *DateError) Unwrap() error { return e.Err }

// ParseDateOrDefault parses raw using the accepted layouts. When raw is empty
// or unparseable it returns fallback together with the parse error, so the
// caller can log the substitution instead of silently masking bad data.
func ParseDateOrDefault(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, ErrEmptyDate
	}
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return fallback, firstErr
}

// wireRecord is the stored JSON shape. Enum and date fields are kept as raw
// strings so legacy values and bad dates can be repaired on decode.
type wireRecord struct {
	ID           string   `json:"id"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Email        string   `json:"email"`
	MobileNumber string   `json:"mobileNumber"`
	Gender       string   `json:"gender"`
	Languages    []string `json:"lang"`
	Date         string   `json:"date"`
	Address      string   `json:"address"`
	Status       string   `json:"status"`
	Course       string   `json:"courses"`
	Skills       string   `json:"skills,omitempty"`
	Experiences  string   `json:"experiences,omitempty"`
}

func toWire(r Record) wireRecord {
	w := wireRecord{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		MobileNumber: r.MobileNumber,
		Gender:       string(r.Gender),
		Languages:    make([]string, len(r.Languages)),
		Address:      r.Address,
		Status:       string(r.Status),
		Course:       string(r.Course),
		Skills:       r.Skills,
		Experiences:  r.Experiences,
	}
	for i, l := range r.Languages {
		w.Languages[i] = string(l)
	}
	if !r.DateOfBirth.IsZero() {
		w.Date = r.DateOfBirth.Format(time.RFC3339)
	}
	return w
}

func fromWire(w wireRecord, now time.Time) (Record, error) {
	r := Record{
		ID:           w.ID,
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		Email:        w.Email,
		MobileNumber: w.MobileNumber,
		Gender:       NormalizeGender(w.Gender),
		Address:      w.Address,
		Status:       NormalizeStatus(w.Status),
		Course:       NormalizeCourse(w.Course),
		Skills:       w.Skills,
		Experiences:  w.Experiences,
	}
	for _, l := range w.Languages {
		r.Languages = append(r.Languages, NormalizeLanguage(l))
	}
	dob, err := ParseDateOrDefault(w.Date, now)
	r.DateOfBirth = dob
	if err != nil {
		return r, &DateError{ID: w.ID, Raw: w.Date, Err: err}
	}
	return r, nil
}

// EncodeList serializes records to the stored JSON array form.
func EncodeList(records []Record) ([]byte, error) {
	wire := make([]wireRecord, len(records))
	for i, r := range records {
		wire[i] = toWire(r)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("contact: encoding list: %w", err)
	}
	return data, nil
}

// DecodeList parses a stored JSON array. Malformed JSON returns an error.
// Records with unparseable dates are kept with DateOfBirth set to now and
// reported in the returned slice of *DateError.
func DecodeList(data []byte, now time.Time) ([]Record, []error, error) {
	var wire []wireRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, nil, fmt.Errorf("contact: decoding list: %w", err)
	}
	records := make([]Record, 0, len(wire))
	var dateErrs []error
	for _, w := range wire {
		r, err := fromWire(w, now)
		if err != nil {
			dateErrs = append(dateErrs, err)
		}
		records = append(records, r)
	}
	return records, dateErrs, nil
}

// EncodeDraft serializes a single (possibly incomplete) record.
func EncodeDraft(r Record) ([]byte, error) {
	data, err := json.Marshal(toWire(r))
	if err != nil {
		return nil, fmt.Errorf("contact: encoding draft: %w", err)
	}
	return data, nil
}

// DecodeDraft parses a single stored record. A bad date is reported as a
// *DateError alongside the repaired record.
func DecodeDraft(data []byte, now time.Time) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("contact: decoding draft: %w", err)
	}
	return fromWire(w, now)
}
