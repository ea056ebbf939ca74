package sim

import (
	"fmt"
	"math"
	"sort"
)

// Linear grows the window by one slot per round.
func Linear(size int) int {
	return size + 1
}

// BinaryExponential doubles the window every round.
func BinaryExponential(size int) int {
	return size * 2
}

// LogLog grows the window by a factor of 1 + 1/log2(log2(size)).
//
// The factor is undefined for size <= 2 (log2(log2(size)) <= 0), so such
// sizes are returned unchanged. ValidateGrowth rejects them as initial sizes.
func LogLog(size int) int {
	if size <= 2 {
		return size
	}
	n := float64(size)
	factor := 1 + 1/math.Log2(math.Log2(n))
	return int(math.Floor(factor * n))
}

const (
	PolicyLinear            = "linear"
	PolicyBinaryExponential = "binary-exponential"
	PolicyLogLog            = "loglog"
)

type growthPolicy struct {
	fn          GrowthFunc
	initialSize int
	description string
}

// growthPolicies is the registry shared by NewGrowthPolicy, validation and
// the CLI listing. Initial sizes are the ones the reference sweep uses; 4
// keeps LogLog out of its undefined domain on the first grow.
var growthPolicies = map[string]growthPolicy{
	PolicyLinear:            {fn: Linear, initialSize: 2, description: "n + 1"},
	PolicyBinaryExponential: {fn: BinaryExponential, initialSize: 2, description: "2n"},
	PolicyLogLog:            {fn: LogLog, initialSize: 4, description: "floor((1 + 1/log2(log2(n))) * n)"},
}

// IsValidGrowthPolicy returns true if name is a registered growth policy.
func IsValidGrowthPolicy(name string) bool {
	_, ok := growthPolicies[name]
	return ok
}

// ValidGrowthPolicyNames returns the registered policy names, sorted.
func ValidGrowthPolicyNames() []string {
	names := make([]string, 0, len(growthPolicies))
	for name := range growthPolicies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewGrowthPolicy returns the growth function registered under name.
// Panics on unrecognized names; callers validate with IsValidGrowthPolicy.
func NewGrowthPolicy(name string) GrowthFunc {
	p, ok := growthPolicies[name]
	if !ok {
		panic(fmt.Sprintf("unknown growth policy %q", name))
	}
	return p.fn
}

// DefaultInitialWindowSize returns the initial window size used for name,
// or 0 if name is not registered.
func DefaultInitialWindowSize(name string) int {
	return growthPolicies[name].initialSize
}

// DescribeGrowthPolicy returns the formula of a registered policy.
func DescribeGrowthPolicy(name string) string {
	return growthPolicies[name].description
}

// ValidateGrowth checks that growth enlarges a window of initialSize.
// A policy that does not grow from its starting size can never resolve a
// round of collisions.
func ValidateGrowth(growth GrowthFunc, initialSize int) error {
	if growth == nil {
		return fmt.Errorf("%w: nil growth function", ErrInvalidConfig)
	}
	if initialSize < 1 {
		return fmt.Errorf("%w: initial window size must be >= 1, got %d", ErrInvalidConfig, initialSize)
	}
	if next := growth(initialSize); next <= initialSize {
		return fmt.Errorf("%w: growth function maps initial window size %d to %d", ErrInvalidConfig, initialSize, next)
	}
	return nil
}
