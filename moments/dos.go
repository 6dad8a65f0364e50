package moments

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/chebtile/operator"
)

// RealParts extracts the real parts of a moment vector. Moments of a
// Hermitian operator against a normalized random vector are real up to
// statistical noise; the imaginary residue is discarded here.
func RealParts[T operator.Scalar](mu []T) []float64 {
	out := make([]float64, len(mu))
	for i, v := range mu {
		switch x := any(v).(type) {
		case float64:
			out[i] = x
		case complex128:
			out[i] = real(x)
		}
	}
	return out
}

// DOS reconstructs the density of states on a rescaled energy grid from
// a damped Chebyshev moment series:
//
//	ρ(x) = (g₀μ₀ + 2·Σₙ gₙμₙ·Tₙ(x)) / (π·√(1−x²))
//
// Every energy must lie strictly inside (−1, 1); physical energies are
// recovered by the caller via E = a·x + b with the model's scale pair.
func DOS(mu []float64, kernel Kernel, energies []float64) ([]float64, error) {
	n := len(mu)
	if n < 1 {
		return nil, ErrOrder
	}
	damped := make([]float64, n)
	for k := range mu {
		damped[k] = kernel(k, n) * mu[k]
	}
	floats.Scale(2, damped[1:])

	out := make([]float64, len(energies))
	cheb := make([]float64, n)
	for i, x := range energies {
		if x <= -1 || x >= 1 {
			return nil, ErrEnergyRange
		}
		chebyshevAt(x, cheb)
		out[i] = floats.Dot(damped, cheb) / (math.Pi * math.Sqrt(1-x*x))
	}
	return out, nil
}

// chebyshevAt fills dst with T₀(x)..T_{len−1}(x) by the same three-term
// recursion the engine runs on vectors.
func chebyshevAt(x float64, dst []float64) {
	dst[0] = 1
	if len(dst) > 1 {
		dst[1] = x
	}
	for k := 2; k < len(dst); k++ {
		dst[k] = 2*x*dst[k-1] - dst[k-2]
	}
}
