package msmc

import (
	"fmt"
	"math"
)

// hardSphereReduced holds B_n / b^(n-1) for hard spheres, b = 2πσ³/3.
var hardSphereReduced = map[int]float64{
	2: 1,
	3: 5.0 / 8,
	4: 0.2869495,
	5: 0.1102520,
	6: 0.03888198,
	7: 0.01302354,
	8: 0.0041832,
}

// HardSphereB returns the n-th virial coefficient of hard spheres of
// diameter sigma.
func HardSphereB(n int, sigma float64) (float64, error) {
	r, ok := hardSphereReduced[n]
	if !ok {
		return 0, fmt.Errorf("%w: n=%d", ErrNoReference, n)
	}
	b2 := 2 * math.Pi * sigma * sigma * sigma / 3
	return r * math.Pow(b2, float64(n-1)), nil
}
