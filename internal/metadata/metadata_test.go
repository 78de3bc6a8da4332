package metadata_test

import (
	"testing"

	"reviewflow/internal/metadata"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{raw: "8.5", want: 8.5, ok: true},
		{raw: "8,5", want: 8.5, ok: true},
		{raw: " 9 ", want: 9, ok: true},
		{raw: "-2", want: -2, ok: true},
		{raw: "10.25", want: 10.25, ok: true},
		{raw: "", ok: false},
		{raw: "bad", ok: false},
		{raw: "1,000.5", ok: false},
		{raw: "1,2,3", ok: false},
		{raw: "NaN", ok: false},
		{raw: "Inf", ok: false},
		{raw: "0x10", ok: false},
		{raw: "1e3", ok: false},
	}
	for _, tt := range tests {
		got, ok := metadata.ParseDecimal(tt.raw)
		if ok != tt.ok {
			t.Fatalf("ParseDecimal(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Fatalf("ParseDecimal(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	if got := metadata.FormatDecimal(8.5); got != "8.5" {
		t.Fatalf("FormatDecimal(8.5) = %q", got)
	}
	if got := metadata.FormatDecimal(10); got != "10" {
		t.Fatalf("FormatDecimal(10) = %q", got)
	}
}

func TestFormatFixedRoundsHalfUp(t *testing.T) {
	cases := map[float64]string{
		8.875:  "8.88",
		8.125:  "8.13",
		10.125: "10.13",
		1.005:  "1.01",
		9.995:  "10.00",
		99.999: "100.00",
		8.124:  "8.12",
		8.5:    "8.50",
		7:      "7.00",
		0:      "0.00",
		-2.125: "-2.13",
	}
	for value, want := range cases {
		if got := metadata.FormatFixed(value); got != want {
			t.Fatalf("FormatFixed(%v) = %q, want %q", value, got, want)
		}
	}
}

func TestFieldNames(t *testing.T) {
	if metadata.Provenance.String() != "dc.description.provenance" {
		t.Fatalf("unexpected provenance field: %s", metadata.Provenance)
	}
	field, ok := metadata.ParseField("workflow.score")
	if !ok || field != metadata.Score {
		t.Fatalf("ParseField(workflow.score) = %+v, %v", field, ok)
	}
	if _, ok := metadata.ParseField("workflow"); ok {
		t.Fatal("expected single segment to be rejected")
	}
}
