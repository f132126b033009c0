package holiday

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the holiday API
const DateLayout = "2006-01-02"

// DetailSeparator joins a date and a local name in detail lines
const DetailSeparator = " — "

// Record represents one public holiday
type Record struct {
	// Date is the ISO 8601 calendar date, e.g. 2025-12-25
	Date string `json:"date"`

	// LocalName is the display name in the country's language
	LocalName string `json:"localName"`

	// Name is the English name
	Name string `json:"name,omitempty"`
}

// Day parses the record date as a UTC midnight value
func (r Record) Day() (time.Time, error) {
	day, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid holiday date %q: %w", r.Date, err)
	}
	return day, nil
}

// Detail returns the "<date> — <localName>" line for the record
func (r Record) Detail() string {
	return r.Date + DetailSeparator + r.LocalName
}

// Set is the immutable list of holidays for one country and year.
// It is safe for concurrent readers.
type Set struct {
	country string
	year    int
	records []Record
}

// NewSet creates a set from records, keeping their order
func NewSet(country string, year int, records []Record) *Set {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Set{
		country: strings.ToUpper(country),
		year:    year,
		records: cp,
	}
}

// Country returns the ISO 3166-1 alpha-2 country code
func (s *Set) Country() string { return s.country }

// Year returns the year the set was fetched for
func (s *Set) Year() int { return s.year }

// Len returns the number of holidays
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// IsEmpty reports whether the set holds no holidays
func (s *Set) IsEmpty() bool { return s.Len() == 0 }

// Records returns a copy of the records in service order
func (s *Set) Records() []Record {
	if s == nil {
		return nil
	}
	cp := make([]Record, len(s.records))
	copy(cp, s.records)
	return cp
}

// Names returns the local names in order
func (s *Set) Names() []string {
	names := make([]string, 0, s.Len())
	for _, r := range s.Records() {
		names = append(names, r.LocalName)
	}
	return names
}

// Details returns one "<date> — <localName>" line per holiday
func (s *Set) Details() []string {
	lines := make([]string, 0, s.Len())
	for _, r := range s.Records() {
		lines = append(lines, r.Detail())
	}
	return lines
}

// WriteNames writes one local name per line
func (s *Set) WriteNames(w io.Writer) error {
	return writeLines(w, s.Names())
}

// WriteDetails writes one detail line per holiday
func (s *Set) WriteDetails(w io.Writer) error {
	return writeLines(w, s.Details())
}

// Upcoming returns the holidays dated on or after today, in set order.
// Records with an unparseable date are left out.
func (s *Set) Upcoming(today time.Time) []Record {
	cutoff := calendarDay(today)

	var upcoming []Record
	for _, r := range s.Records() {
		day, err := r.Day()
		if err != nil {
			continue
		}
		if !day.Before(cutoff) {
			upcoming = append(upcoming, r)
		}
	}
	return upcoming
}

// Nearest returns the earliest holiday dated on or after today.
// A holiday dated today counts. The first record wins on equal dates.
func (s *Set) Nearest(today time.Time) (Record, bool) {
	var (
		best    Record
		bestDay time.Time
		found   bool
	)

	for _, r := range s.Upcoming(today) {
		day, _ := r.Day()
		if !found || day.Before(bestDay) {
			best, bestDay, found = r, day, true
		}
	}

	return best, found
}

// Malformed returns the records whose date cannot be parsed
func (s *Set) Malformed() []Record {
	var bad []Record
	for _, r := range s.Records() {
		if _, err := r.Day(); err != nil {
			bad = append(bad, r)
		}
	}
	return bad
}

// SaveFile overwrites path with whatever write produces
func SaveFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}

// calendarDay drops the clock part of t, keeping its local calendar date
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
