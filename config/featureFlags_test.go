package config

import "testing"

func TestLogisticsUnitCost(t *testing.T) {
	t.Setenv("LOGISTICS_UNIT_COST", "")
	if got := LogisticsUnitCost(); got != 600 {
		t.Fatalf("default = %d, want 600", got)
	}

	t.Setenv("LOGISTICS_UNIT_COST", "750")
	if got := LogisticsUnitCost(); got != 750 {
		t.Fatalf("override = %d, want 750", got)
	}

	// Garbage and negatives fall back to the default.
	t.Setenv("LOGISTICS_UNIT_COST", "abc")
	if got := LogisticsUnitCost(); got != 600 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("LOGISTICS_UNIT_COST", "-1")
	if got := LogisticsUnitCost(); got != 600 {
		t.Fatalf("got %d", got)
	}
}

func TestOutputDir(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "")
	if got := OutputDir(); got != "output" {
		t.Fatalf("default = %q", got)
	}
	t.Setenv("OUTPUT_DIR", "/tmp/generated")
	if got := OutputDir(); got != "/tmp/generated" {
		t.Fatalf("override = %q", got)
	}
}
