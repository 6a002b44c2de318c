// Package pso implements the PSO Driver: a swarm search over the full
// decision-vector space with an external non-dominated archive
// (spec.md §4.5).
package pso

import "github.com/msucast/bmpopt/internal/model"

// Particle holds the per-particle state of spec.md §4.5: current
// position, velocity, personal best, and the last evaluation.
type Particle struct {
	X []float64
	V []float64

	PBest     []float64
	PBestObjs []float64

	Last model.Candidate
}

// NewParticle allocates a particle with n decision variables.
func NewParticle(n int) *Particle {
	return &Particle{
		X: make([]float64, n),
		V: make([]float64, n),
	}
}

// clip clamps v into [lb, ub] in place.
func clip(v []float64, lb, ub float64) {
	for i, x := range v {
		if x < lb {
			v[i] = lb
		} else if x > ub {
			v[i] = ub
		}
	}
}
