package encoding

import "math/rand"

// Initialize fills x (which must have length l.N()) per spec.md §4.2:
// for every block and every group, the slack variable is set to 1.0
// and every BMP share variable is set to a uniform random value in
// [0,1]. The uniform slack=1 keeps the initial expected share modest.
func (l *Layout) Initialize(x []float64, rng *rand.Rand) {
	if len(x) != l.N() {
		panic("encoding: Initialize: x has the wrong length for this layout")
	}
	for _, g := range l.efficiency {
		initGroup(x, g.group, rng)
	}
	for _, g := range l.land {
		initGroup(x, g.group, rng)
	}
	for _, g := range l.animal {
		initGroup(x, g.group, rng)
	}
	for _, g := range l.manure {
		initGroup(x, g.group, rng)
	}
}

func initGroup(x []float64, g group, rng *rand.Rand) {
	x[g.slackIdx] = 1.0
	for _, i := range g.bmpIdx {
		x[i] = rng.Float64()
	}
}
