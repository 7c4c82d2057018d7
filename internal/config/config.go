// Package config defines the canonical, JSON-serializable configuration model
// for the load pipeline. It is intentionally small, explicit, and dependency-
// free so that pipeline files can be loaded from disk and passed through the
// program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":     "statcast_load",
//	  "source":  { "kind": "file", "file": { "dir": "data/raw" } },
//	  "parser":  { "kind": "csv", "options": { "has_header": true } },
//	  "validate":{ "strict": false },
//	  "storage": { "kind": "postgres", "db": { "dsn": "...", "table": "public.statcast_data" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline describes the full load pipeline in JSON. It is the top-level
// object decoded from a pipeline file (e.g., configs/pipelines/*.json).
type Pipeline struct {
	// Job names the run for logging and metrics labeling.
	Job string `json:"job"`

	// Source describes where the snapshot comes from.
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into records.
	Parser Parser `json:"parser"`

	// Validate configures the pre-load checks.
	Validate ValidateConfig `json:"validate"`

	// Storage describes where validated records are written.
	Storage Storage `json:"storage"`

	// Runtime controls batching.
	Runtime RuntimeConfig `json:"runtime"`

	// Metrics selects the metrics backend.
	Metrics MetricsConfig `json:"metrics"`
}

// Source identifies the snapshot source.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind. Either Path
// names an exact snapshot or Dir is scanned for the newest *.csv, optionally
// narrowed by Prefix.
type SourceFile struct {
	Path   string `json:"path"`
	Dir    string `json:"dir"`
	Prefix string `json:"prefix"`
}

// Parser selects how to parse the raw source into logical rows/columns.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys include:
	//   has_header (bool), comma (string), trim_space (bool),
	//   expected_fields (int), header_map (object)
	Options Options `json:"options"`
}

// ValidateConfig configures the pre-load validator.
type ValidateConfig struct {
	// Strict promotes string-length findings from warnings to violations.
	Strict bool `json:"strict"`

	// SampleSize bounds the per-violation row sample. Zero means the
	// validator default.
	SampleSize int `json:"sample_size"`
}

// Storage selects the sink used to persist validated records.
type Storage struct {
	// Kind selects the storage backend: postgres, sqlite, mysql, mssql.
	Kind string `json:"kind"`

	// DB configures the selected backend.
	DB DBConfig `json:"db"`
}

// DBConfig configures the DB sink shared across backends.
type DBConfig struct {
	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// Table is the fully qualified destination name (e.g. "public.statcast_data").
	Table string `json:"table"`

	// AutoCreateTable applies the canonical CREATE TABLE before loading.
	AutoCreateTable bool `json:"auto_create_table"`
}

// RuntimeConfig controls batching.
type RuntimeConfig struct {
	BatchSize int `json:"batch_size"`
}

// MetricsConfig selects the metrics backend. Backend "pushgateway" requires
// URL (the Pushgateway base URL), "datadog" requires URL (the DogStatsD
// address); empty or "none" disables metrics.
type MetricsConfig struct {
	Backend string `json:"backend"`
	URL     string `json:"url"`
}

// Load reads and decodes a pipeline file.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read pipeline file: %w", err)
	}
	var p Pipeline
	if err := json.Unmarshal(b, &p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline file %s: %w", path, err)
	}
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Useful for single-character parser settings such as a
// CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object decodes to a non-nil, empty Options map. This removes the
// need to nil-check Options at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
