// Package normalize maps raw parsed rows onto the canonical pitch-event
// schema: column names are case-folded, declared numeric columns become
// float64 (NULL on parse failure), nullable integers become int64 without
// zero-filling, and the game_date column is parsed into time.Time.
//
// Normalization is a pure transform: input records are not mutated, and the
// only outputs are the normalized rows plus a diagnostics summary.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"statcast/internal/schema"
	"statcast/pkg/records"
)

// Diagnostics summarizes non-fatal findings from one normalization pass.
type Diagnostics struct {
	// MissingColumns lists canonical columns not found in the input. They are
	// absent from the output as well; nothing is fabricated.
	MissingColumns []string `json:"missing_columns,omitempty"`

	// DroppedColumns lists input columns outside the canonical schema,
	// dropped silently from the output.
	DroppedColumns []string `json:"dropped_columns,omitempty"`

	// NulledValues counts, per column, values that failed numeric parsing and
	// were replaced with NULL.
	NulledValues map[string]int `json:"nulled_values,omitempty"`
}

// SchemaError reports a load-critical field that failed to parse. It aborts
// the whole normalization step, unlike measurement fields which degrade to
// NULL.
type SchemaError struct {
	Column string
	Value  string
	Row    int // 0-based index into the input row-set
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("normalize: row %d: column %q: unparseable value %q", e.Row, e.Column, e.Value)
}

// Normalize maps the raw row-set onto the contract. The output column set is
// the intersection of the contract and the columns present in the input;
// extra columns are dropped, missing ones reported in Diagnostics.
func Normalize(in []records.Record, c schema.Contract) ([]records.Record, Diagnostics, error) {
	diag := Diagnostics{NulledValues: map[string]int{}}

	// Column presence is decided over the union of input keys (post-fold) so
	// the intersection logic does not depend on any single row.
	present := map[string]string{} // canonical name -> folded input key
	seen := map[string]bool{}
	for _, rec := range in {
		for k := range rec {
			folded := FoldName(k)
			if seen[folded] {
				continue
			}
			seen[folded] = true
			if _, ok := c.Lookup(folded); ok {
				present[folded] = k
			} else {
				diag.DroppedColumns = append(diag.DroppedColumns, folded)
			}
		}
	}
	for _, col := range c.Columns {
		if _, ok := present[col.Name]; !ok {
			diag.MissingColumns = append(diag.MissingColumns, col.Name)
		}
	}

	out := make([]records.Record, 0, len(in))
	for i, rec := range in {
		nr := make(records.Record, len(present))
		for _, col := range c.Columns {
			srcKey, ok := present[col.Name]
			if !ok {
				continue
			}
			raw, ok := rec[srcKey]
			if !ok {
				// Row is narrower than the union; treat as NULL.
				nr[col.Name] = nil
				continue
			}
			v, nulled, err := coerce(raw, col)
			if err != nil {
				return nil, diag, &SchemaError{Column: col.Name, Value: asString(raw), Row: i}
			}
			if nulled {
				diag.NulledValues[col.Name]++
			}
			nr[col.Name] = v
		}
		out = append(out, nr)
	}
	if len(diag.NulledValues) == 0 {
		diag.NulledValues = nil
	}
	return out, diag, nil
}

// coerce converts one raw cell to the column's declared type. The bool result
// reports a value degraded to NULL (numeric parse failure). The error is
// non-nil only for the load-critical date kind.
func coerce(v any, col schema.Column) (any, bool, error) {
	if v == nil {
		return nil, false, nil
	}
	switch col.Kind {
	case schema.Real:
		switch t := v.(type) {
		case float64:
			return t, false, nil
		case int64:
			return float64(t), false, nil
		case int:
			return float64(t), false, nil
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, false, nil
			}
			return nil, true, nil
		default:
			return nil, true, nil
		}

	case schema.BigInt:
		switch t := v.(type) {
		case int64:
			return t, false, nil
		case int:
			return int64(t), false, nil
		case float64:
			if t == float64(int64(t)) {
				return int64(t), false, nil
			}
			return nil, true, nil
		case string:
			s := strings.TrimSpace(t)
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i, false, nil
			}
			// Nullable-integer columns round-trip through float formatting in
			// some exports ("5.0"); accept integral floats.
			if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
				return int64(f), false, nil
			}
			return nil, true, nil
		default:
			return nil, true, nil
		}

	case schema.Date:
		switch t := v.(type) {
		case time.Time:
			return t, false, nil
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				return nil, false, nil
			}
			if ts, err := time.Parse(schema.DateLayout, s); err == nil {
				return ts, false, nil
			}
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts, false, nil
			}
			return nil, false, fmt.Errorf("invalid date")
		default:
			return nil, false, fmt.Errorf("type %T not date-convertible", v)
		}

	default: // text
		if s, ok := v.(string); ok {
			return s, false, nil
		}
		return asString(v), false, nil
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
