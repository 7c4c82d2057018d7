// Package records defines the row representation shared by the parser,
// normalizer, validator, and storage layers.
package records

// Record is a single row keyed by canonical column name. Values are raw
// strings straight out of the parser, or typed values (int64, float64,
// time.Time) after normalization. A nil value means SQL NULL.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
