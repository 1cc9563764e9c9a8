package equation

import "math"

// functions returns the helpers available to equations in addition to the
// evaluator's builtins (min, max, abs, ...). Bit operations are functions
// because the evaluator has no bitwise operators.
func (r *Rule) functions() map[string]any {
	return map[string]any{
		"sqrt": func(v int) int {
			if v <= 0 {
				return 0
			}
			return int(math.Sqrt(float64(v)))
		},
		"rand": func(n int) int { return r.rng.IntN(n) },
		"band": func(a, b int) int { return a & b },
		"bor":  func(a, b int) int { return a | b },
		"bxor": func(a, b int) int { return a ^ b },
		"shl":  func(a, b int) int { return a << uint(b&63) },
		"shr":  func(a, b int) int { return a >> uint(b&63) },
	}
}
