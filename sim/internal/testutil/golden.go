// Package testutil provides shared test infrastructure for the backoff
// simulator: golden dataset types and assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GrowthGolden represents the structure of testdata/growth_golden.json.
type GrowthGolden struct {
	Growth []GrowthCase `json:"growth"`
}

// GrowthCase is the window size sequence a policy produces from an
// initial size. Sizes[0] is the initial size.
type GrowthCase struct {
	Policy  string `json:"policy"`
	Initial int    `json:"initial"`
	Sizes   []int  `json:"sizes"`
}

// LoadGrowthGolden loads the growth golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGrowthGolden(t *testing.T) *GrowthGolden {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "growth_golden.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read growth golden dataset: %v", err)
	}

	var dataset GrowthGolden
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse growth golden dataset: %v", err)
	}
	if len(dataset.Growth) == 0 {
		t.Fatal("growth golden dataset is empty")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
