// Package validate runs the fixed battery of pre-load checks over a
// normalized row-set: NULL primary-key values, duplicate primary keys, and
// declared string-length bounds.
//
// All checks run regardless of earlier failures so the caller gets the full
// diagnostic in one pass. NULL and duplicate primary keys are load-blocking;
// string-length findings are warnings unless strict mode is requested.
// Nothing is auto-repaired: duplicates are reported, never silently dropped.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"statcast/pkg/records"
)

// Check names reported in violations and warnings.
const (
	CheckNullKey   = "null_pk"
	CheckDupKey    = "duplicate_pk"
	CheckStringLen = "string_length"
)

// defaultSampleSize caps how many offending rows a violation carries for
// display.
const defaultSampleSize = 10

// Options configures one validation pass.
type Options struct {
	// PrimaryKey lists the columns forming the composite natural key.
	PrimaryKey []string

	// LengthLimits maps column name to the maximum stored string length.
	LengthLimits map[string]int

	// Strict promotes string-length findings from warnings to violations.
	Strict bool

	// SampleSize bounds the per-violation row sample. Zero means the default.
	SampleSize int
}

// Violation is a load-blocking finding.
type Violation struct {
	Check   string           `json:"check"`
	Message string           `json:"message"`
	Rows    int              `json:"rows"` // offending row count
	Sample  []records.Record `json:"sample,omitempty"`
}

// Warning is a non-blocking finding.
type Warning struct {
	Check   string `json:"check"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Rows    int    `json:"rows,omitempty"`
}

// Result is the outcome of one validation pass. OK is true only when there
// are no violations; warnings never affect OK.
type Result struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations,omitempty"`
	Warnings   []Warning   `json:"warnings,omitempty"`
}

// Check validates the row-set and returns the aggregate result. The input is
// not mutated.
func Check(rows []records.Record, opts Options) Result {
	sample := opts.SampleSize
	if sample <= 0 {
		sample = defaultSampleSize
	}

	var res Result

	if v, ok := checkNullKeys(rows, opts.PrimaryKey, sample); ok {
		res.Violations = append(res.Violations, v)
	}
	if v, ok := checkDuplicateKeys(rows, opts.PrimaryKey, sample); ok {
		res.Violations = append(res.Violations, v)
	}
	violations, warnings := checkLengths(rows, opts.LengthLimits, opts.Strict)
	res.Violations = append(res.Violations, violations...)
	res.Warnings = append(res.Warnings, warnings...)

	res.OK = len(res.Violations) == 0
	return res
}

// checkNullKeys flags rows carrying a NULL in any key column.
func checkNullKeys(rows []records.Record, pk []string, sampleSize int) (Violation, bool) {
	if len(pk) == 0 {
		return Violation{}, false
	}
	var count int
	var sample []records.Record
	for _, rec := range rows {
		for _, col := range pk {
			if v, ok := rec[col]; !ok || v == nil {
				count++
				if len(sample) < sampleSize {
					sample = append(sample, rec)
				}
				break
			}
		}
	}
	if count == 0 {
		return Violation{}, false
	}
	return Violation{
		Check:   CheckNullKey,
		Message: fmt.Sprintf("%d rows with NULL values in primary key columns %v", count, pk),
		Rows:    count,
		Sample:  sample,
	}, true
}

// checkDuplicateKeys groups rows by an xxh3 hash of the composite key and
// flags every row participating in a group of two or more. The reported count
// covers all members, not just the extras, matching the hard-stop policy.
func checkDuplicateKeys(rows []records.Record, pk []string, sampleSize int) (Violation, bool) {
	if len(pk) == 0 {
		return Violation{}, false
	}
	groups := map[uint64][]int{}
	display := map[uint64]string{}
	for i, rec := range rows {
		key, ok := keyOf(rec, pk)
		if !ok {
			// NULL keys are the previous check's finding.
			continue
		}
		h := xxh3.HashString(key)
		groups[h] = append(groups[h], i)
		if _, seen := display[h]; !seen {
			display[h] = key
		}
	}

	var dupKeys []string
	dupHash := map[string]uint64{}
	var count int
	for h, members := range groups {
		if len(members) > 1 {
			dupKeys = append(dupKeys, display[h])
			dupHash[display[h]] = h
			count += len(members)
		}
	}
	if count == 0 {
		return Violation{}, false
	}

	// Deterministic sample: all occurrences, ordered by key, capped.
	sort.Strings(dupKeys)
	var sample []records.Record
	for _, key := range dupKeys {
		for _, i := range groups[dupHash[key]] {
			if len(sample) >= sampleSize {
				break
			}
			sample = append(sample, rows[i])
		}
	}

	return Violation{
		Check:   CheckDupKey,
		Message: fmt.Sprintf("%d rows are part of duplicate primary key combinations %v (%d distinct keys)", count, pk, len(dupKeys)),
		Rows:    count,
		Sample:  sample,
	}, true
}

// checkLengths compares the maximum observed string length per limited column
// against its declared bound.
func checkLengths(rows []records.Record, limits map[string]int, strict bool) ([]Violation, []Warning) {
	var violations []Violation
	var warnings []Warning

	cols := make([]string, 0, len(limits))
	for col := range limits {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		limit := limits[col]
		maxLen, over := 0, 0
		for _, rec := range rows {
			s, ok := rec[col].(string)
			if !ok {
				continue
			}
			if n := len([]rune(s)); n > maxLen {
				maxLen = n
			}
			if len([]rune(s)) > limit {
				over++
			}
		}
		if maxLen <= limit {
			continue
		}
		msg := fmt.Sprintf("longest %q has length %d, exceeds limit of %d", col, maxLen, limit)
		if strict {
			violations = append(violations, Violation{
				Check:   CheckStringLen,
				Message: msg,
				Rows:    over,
			})
			continue
		}
		warnings = append(warnings, Warning{
			Check:   CheckStringLen,
			Column:  col,
			Message: msg,
			Rows:    over,
		})
	}
	return violations, warnings
}

// keyOf composes the record's primary-key identity. The second return is
// false when any key column is NULL or absent.
func keyOf(rec records.Record, pk []string) (string, bool) {
	var b strings.Builder
	for i, col := range pk {
		v, ok := rec[col]
		if !ok || v == nil {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(fmt.Sprint(v))
	}
	return b.String(), true
}
