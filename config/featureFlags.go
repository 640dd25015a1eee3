package config

import (
	"os"
	"strconv"
	"strings"
)

// LogisticsUnitCost is the fixed per-unit inbound/outbound handling cost
// applied during settlement. The marketplace charges this per received unit.
//
// Set via env:
// - LOGISTICS_UNIT_COST=600
func LogisticsUnitCost() int64 {
	raw := strings.TrimSpace(os.Getenv("LOGISTICS_UNIT_COST"))
	if raw == "" {
		return 600
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 600
	}
	return n
}

// OutputDir is where generated order/shipment/settlement workbooks are written.
// The HTTP layer owns this directory; the processing code only writes into it.
//
// Set via env:
// - OUTPUT_DIR=output
func OutputDir() string {
	dir := strings.TrimSpace(os.Getenv("OUTPUT_DIR"))
	if dir == "" {
		return "output"
	}
	return dir
}
