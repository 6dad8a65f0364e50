package moments_test

import (
	"fmt"

	"github.com/katalvlaran/chebtile/moments"
)

// The zeroth moment alone reconstructs the Chebyshev weight function
// itself; at the band center it evaluates to 1/π.
func ExampleDOS() {
	mu := []float64{1, 0, 0, 0}
	rho, err := moments.DOS(mu, moments.Flat, []float64{0})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.4f\n", rho[0])
	// Output: 0.3183
}

func ExampleAccumulator_Update() {
	acc, _ := moments.NewAccumulator[float64](1)
	_ = acc.Update([]float64{2})
	_ = acc.Update([]float64{4})
	fmt.Println(acc.Moments()[0], acc.Count())
	// Output: 3 2
}
