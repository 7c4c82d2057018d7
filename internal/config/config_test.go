package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	raw := `{
		"job": "statcast_load",
		"source": {"kind": "file", "file": {"dir": "data/raw", "prefix": "shohei_ohtani"}},
		"parser": {"kind": "csv", "options": {"has_header": true, "comma": ";", "expected_fields": 80}},
		"validate": {"strict": true, "sample_size": 10},
		"storage": {"kind": "postgres", "db": {"dsn": "postgres://localhost/statcast", "table": "public.statcast_data", "auto_create_table": true}},
		"runtime": {"batch_size": 500},
		"metrics": {"backend": "pushgateway", "url": "http://localhost:9091"}
	}`
	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if p.Job != "statcast_load" {
		t.Errorf("Job = %q", p.Job)
	}
	if p.Source.Kind != "file" || p.Source.File.Dir != "data/raw" || p.Source.File.Prefix != "shohei_ohtani" {
		t.Errorf("Source = %+v", p.Source)
	}
	if got := p.Parser.Options.Bool("has_header", false); !got {
		t.Error("has_header not decoded")
	}
	if got := p.Parser.Options.Rune("comma", ','); got != ';' {
		t.Errorf("comma = %q", got)
	}
	if got := p.Parser.Options.Int("expected_fields", 0); got != 80 {
		t.Errorf("expected_fields = %d", got)
	}
	if !p.Validate.Strict || p.Validate.SampleSize != 10 {
		t.Errorf("Validate = %+v", p.Validate)
	}
	if !p.Storage.DB.AutoCreateTable {
		t.Error("auto_create_table not decoded")
	}
	if p.Runtime.BatchSize != 500 {
		t.Errorf("BatchSize = %d", p.Runtime.BatchSize)
	}
	if p.Metrics.Backend != "pushgateway" || p.Metrics.URL != "http://localhost:9091" {
		t.Errorf("Metrics = %+v", p.Metrics)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing file accepted")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestOptionsGetters(t *testing.T) {
	t.Parallel()

	o := Options{
		"s":    "hello",
		"b":    true,
		"n":    float64(42),
		"r":    "é;",
		"m":    map[string]any{"a": "x", "bad": 7},
		"poly": []any{"nope"},
	}

	if got := o.String("s", "def"); got != "hello" {
		t.Errorf("String = %q", got)
	}
	if got := o.String("absent", "def"); got != "def" {
		t.Errorf("String default = %q", got)
	}
	if got := o.String("b", "def"); got != "def" {
		t.Errorf("String wrong-type = %q", got)
	}
	if !o.Bool("b", false) || o.Bool("absent", false) {
		t.Error("Bool lookup wrong")
	}
	if got := o.Int("n", 0); got != 42 {
		t.Errorf("Int = %d", got)
	}
	if got := o.Rune("r", ','); got != 'é' {
		t.Errorf("Rune = %q", got)
	}
	if got := o.Rune("absent", ','); got != ',' {
		t.Errorf("Rune default = %q", got)
	}
	m := o.StringMap("m")
	if len(m) != 1 || m["a"] != "x" {
		t.Errorf("StringMap = %v", m)
	}
	if got := o.StringMap("poly"); len(got) != 0 {
		t.Errorf("StringMap non-object = %v", got)
	}
}

func TestOptionsNullDecodesEmpty(t *testing.T) {
	t.Parallel()

	var p Parser
	if err := json.Unmarshal([]byte(`{"kind":"csv","options":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Options == nil {
		t.Fatal("Options is nil, want empty map")
	}
	if got := p.Options.Bool("has_header", true); !got {
		t.Error("default lookup on empty Options broken")
	}
}
