package mathutil

import "math"

// Within returns an absolute-tolerance comparison for mgl64's ApproxFuncEqual
// methods. mgl64's own thresholds are relative and square the tolerance when
// either side is exactly zero, which rejects tiny residues like 1e-17.
func Within(eps float64) func(a, b float64) bool {
	return func(a, b float64) bool {
		return math.Abs(a-b) <= eps
	}
}
