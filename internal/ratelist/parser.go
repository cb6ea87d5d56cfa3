// Package ratelist turns the lines of a laboratory rate list into test entries.
//
// A rate list row looks like "12   Complete Blood Count (CBC)   350   Whole Blood":
// serial number, free-text name, comma-grouped price and the specimen. Names that
// wrap onto the next line are merged back into the entry they belong to.
package ratelist

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"LabRateImporter/internal/domain"
)

// LineKind tells what a single line contributed to the parse.
type LineKind int

const (
	// LineMalformed lines are dropped without effect.
	LineMalformed LineKind = iota
	LineNoise
	LineRecord
	LineContinuation
)

func (k LineKind) String() string {
	switch k {
	case LineNoise:
		return "noise"
	case LineRecord:
		return "record"
	case LineContinuation:
		return "continuation"
	default:
		return "malformed"
	}
}

var (
	rowExpr   = regexp.MustCompile(`^(\d+)\s+(.+?)\s+([0-9,]+)\s+(.+?)$`)
	priceExpr = regexp.MustCompile(`^[0-9,]+$`)

	// headerMarkers identify table header rows; matching is case-sensitive.
	headerMarkers = []string{"Sr.No", "Test Name", "MRP"}
)

// Result is the outcome of parsing a whole document.
type Result struct {
	Entries       []domain.TestEntry
	Lines         int
	Noise         int
	Continuations int
	Malformed     int
}

// Parse walks lines in order and accumulates entries, merging continuation
// lines into the most recently parsed entry.
func Parse(lines []string) Result {
	res := Result{Lines: len(lines)}
	current := -1

	for _, line := range lines {
		entry, kind := ParseLine(line)
		switch kind {
		case LineNoise:
			res.Noise++
		case LineRecord:
			res.Entries = append(res.Entries, entry)
			current = len(res.Entries) - 1
		case LineContinuation:
			if current < 0 {
				res.Malformed++
				continue
			}
			res.Entries[current].Name += " " + strings.TrimSpace(line)
			res.Continuations++
		default:
			res.Malformed++
		}
	}

	return res
}

// ParseLine classifies one line. A LineContinuation result carries no entry;
// the caller decides whether there is a previous entry to extend.
func ParseLine(line string) (domain.TestEntry, LineKind) {
	line = strings.TrimSpace(line)
	if isNoise(line) {
		return domain.TestEntry{}, LineNoise
	}

	if m := rowExpr.FindStringSubmatch(line); m != nil {
		entry, ok := fromMatch(m)
		if !ok {
			return domain.TestEntry{}, unparsed(line)
		}
		return entry, LineRecord
	}

	if entry, ok := fromTokens(strings.Fields(line)); ok {
		return entry, LineRecord
	}

	return domain.TestEntry{}, unparsed(line)
}

func isNoise(line string) bool {
	if line == "" {
		return true
	}
	for _, marker := range headerMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func fromMatch(m []string) (domain.TestEntry, bool) {
	serial, err := strconv.Atoi(m[1])
	if err != nil {
		return domain.TestEntry{}, false
	}
	price, ok := parsePrice(m[3])
	if !ok {
		return domain.TestEntry{}, false
	}
	return newEntry(serial, m[2], price, m[4])
}

// fromTokens locates the price as the first all-digit token after the serial.
func fromTokens(parts []string) (domain.TestEntry, bool) {
	if len(parts) < 3 {
		return domain.TestEntry{}, false
	}

	serial := 0
	if isDigits(parts[0]) {
		if n, err := strconv.Atoi(parts[0]); err == nil {
			serial = n
		}
	}

	for i := 1; i < len(parts); i++ {
		if !priceExpr.MatchString(parts[i]) {
			continue
		}
		price, ok := parsePrice(parts[i])
		if !ok {
			continue
		}
		return newEntry(serial,
			strings.Join(parts[1:i], " "),
			price,
			strings.Join(parts[i+1:], " "))
	}

	return domain.TestEntry{}, false
}

func newEntry(serial int, name string, price int, sample string) (domain.TestEntry, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.TestEntry{}, false
	}
	sample = strings.TrimSpace(sample)
	if sample == "" {
		sample = domain.DefaultSampleType
	}
	return domain.TestEntry{
		SerialNumber: serial,
		Name:         name,
		Price:        price,
		SampleType:   sample,
	}, true
}

func parsePrice(raw string) (int, bool) {
	price, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

// unparsed decides between a wrapped name fragment and a broken row. Digits
// inside a word ("25-Hydroxy", "B12") are part of a name; a standalone number
// means the line was meant to be a row of its own.
func unparsed(line string) LineKind {
	for _, tok := range strings.Fields(line) {
		if priceExpr.MatchString(tok) && strings.IndexFunc(tok, unicode.IsDigit) >= 0 {
			return LineMalformed
		}
	}
	return LineContinuation
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
