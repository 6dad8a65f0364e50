package moments

import "math"

// Kernel is an order-dependent damping factor g_n applied to a truncated
// moment series; it suppresses the Gibbs oscillations of the bare
// Chebyshev sum.
type Kernel func(n, total int) float64

// Jackson is the standard kernel for spectral densities: positive,
// normalized, with energy resolution π/total.
func Jackson(n, total int) float64 {
	q := math.Pi / float64(total+1)
	nn := float64(n)
	return (float64(total+1-n)*math.Cos(q*nn) + math.Sin(q*nn)/math.Tan(q)) / float64(total+1)
}

// Lorentz returns the kernel preserving causality of Green's functions,
// sinh(λ(1−n/total))/sinh(λ), with resolution parameter lambda.
func Lorentz(lambda float64) Kernel {
	return func(n, total int) float64 {
		return math.Sinh(lambda*(1-float64(n)/float64(total))) / math.Sinh(lambda)
	}
}

// Flat is the undamped kernel, g_n = 1.
func Flat(_, _ int) float64 { return 1 }
