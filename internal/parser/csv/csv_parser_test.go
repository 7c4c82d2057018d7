package csv

import (
	"strings"
	"testing"
)

func TestParseWithHeader(t *testing.T) {
	t.Parallel()

	input := "pitch_type,release_speed,description\nFF,97.4,called_strike\nSL,,swinging_strike\n"
	p := NewParser(Options{HasHeader: true})
	rows, skipped, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["pitch_type"] != "FF" || rows[0]["release_speed"] != "97.4" {
		t.Errorf("row 0 = %#v", rows[0])
	}
	if rows[1]["release_speed"] != nil {
		t.Errorf("empty cell = %#v, want nil", rows[1]["release_speed"])
	}
}

func TestHeaderNormalization(t *testing.T) {
	t.Parallel()

	input := "Pitch Type,Release Speed\nFF,95.0\n"
	p := NewParser(Options{HasHeader: true})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0]["pitch_type"] != "FF" {
		t.Errorf("normalized headers missing: %#v", rows[0])
	}
	if rows[0]["release_speed"] != "95.0" {
		t.Errorf("normalized headers missing: %#v", rows[0])
	}
}

func TestHeaderMapOverrides(t *testing.T) {
	t.Parallel()

	input := "PitchCode,speed\nFF,95.0\n"
	p := NewParser(Options{
		HasHeader: true,
		HeaderMap: map[string]string{"PitchCode": "pitch_type"},
	})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0]["pitch_type"] != "FF" {
		t.Errorf("header map not applied: %#v", rows[0])
	}
	// Unmapped headers still get the default normalization.
	if rows[0]["speed"] != "95.0" {
		t.Errorf("unmapped header lost: %#v", rows[0])
	}
}

func TestBOMStripped(t *testing.T) {
	t.Parallel()

	input := "\uFEFFpitch_type\nFF\n"
	p := NewParser(Options{HasHeader: true})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0]["pitch_type"] != "FF" {
		t.Errorf("BOM not stripped from first header: %#v", rows[0])
	}
}

func TestWidthMismatchSoftSkips(t *testing.T) {
	t.Parallel()

	input := "a,b\n1,2\n1,2,3\n4,5\n"
	p := NewParser(Options{HasHeader: true})
	rows, skipped, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}

func TestNoHeaderSynthesizesColumns(t *testing.T) {
	t.Parallel()

	input := "1,2\n3,4\n"
	p := NewParser(Options{ExpectedFields: 2})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["col_0"] != "1" || rows[0]["col_1"] != "2" {
		t.Errorf("row 0 = %#v", rows[0])
	}
}

func TestTrimSpace(t *testing.T) {
	t.Parallel()

	input := "a\n  padded  \n"
	p := NewParser(Options{HasHeader: true, TrimSpace: true})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0]["a"] != "padded" {
		t.Errorf("value = %#v, want trimmed", rows[0]["a"])
	}
}

func TestCustomDelimiter(t *testing.T) {
	t.Parallel()

	input := "a;b\n1;2\n"
	p := NewParser(Options{HasHeader: true, Comma: ';'})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0]["a"] != "1" || rows[0]["b"] != "2" {
		t.Errorf("row = %#v", rows[0])
	}
}
