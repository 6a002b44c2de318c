package pso

import (
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/msucast/bmpopt/internal/model"
)

// Params are the tunables of spec.md §4.5, defaulted by
// internal/config.FromViper (nparts=20, nobjs=2, max_iter=20,
// w=0.7, c1=c2=1.4, lb=0, ub=1).
type Params struct {
	NParts  int
	NObjs   int
	MaxIter int
	W       float64
	C1      float64
	C2      float64
	LB      float64
	UB      float64
}

// batchEvaluator is the subset of Evaluator's surface Swarm depends
// on, so tests can drive the per-iteration algorithm against a cheap
// in-process fitness function instead of the full dispatch pipeline.
type batchEvaluator interface {
	Batch(ctx context.Context, particles []*Particle)
}

// Swarm runs the PSO Driver of spec.md §4.5.
type Swarm struct {
	Params    Params
	N         int // decision vector length
	Evaluator batchEvaluator
	Rand      *rand.Rand
	Log       logrus.FieldLogger

	particles []*Particle
	archive   *Archive
}

// NewSwarm allocates nparts particles of dimension n.
func NewSwarm(p Params, n int, eval batchEvaluator, rng *rand.Rand, log logrus.FieldLogger) *Swarm {
	if log == nil {
		log = logrus.StandardLogger()
	}
	particles := make([]*Particle, p.NParts)
	for i := range particles {
		particles[i] = NewParticle(n)
	}
	return &Swarm{Params: p, N: n, Evaluator: eval, Rand: rng, Log: log, particles: particles, archive: NewArchive()}
}

// Archive returns the driver's external non-dominated archive.
func (s *Swarm) Archive() *Archive { return s.archive }

// Run executes spec.md §4.5's per-iteration algorithm for MaxIter
// iterations, using initializer to fill each particle's starting
// position (spec.md §4.5 step 1, "for each particle call Encoding
// initialize(x)").
func (s *Swarm) Run(ctx context.Context, initialize func(x []float64, rng *rand.Rand)) {
	for _, p := range s.particles {
		initialize(p.X, s.Rand)
		for i := range p.V {
			p.V[i] = 0
		}
	}

	for iter := 0; iter < s.Params.MaxIter; iter++ {
		s.Evaluator.Batch(ctx, s.particles)

		for _, p := range s.particles {
			s.updatePersonalBest(p)
			if p.Last.Failed {
				continue // sentinel-objective candidates are kept out of the archive
			}
			s.archive.Offer(p.Last)
		}

		if s.archive.Len() == 0 {
			s.Log.WithField("iteration", iter).Warn("pso: archive empty after sweep")
			continue
		}

		for _, p := range s.particles {
			s.move(p)
		}

		s.Log.WithFields(logrus.Fields{"iteration": iter, "archive_size": s.archive.Len()}).Info("pso: iteration complete")
	}
}

// updatePersonalBest overwrites a particle's personal best when the
// new objectives are non-dominated by the prior best (spec.md §4.5
// step 3).
func (s *Swarm) updatePersonalBest(p *Particle) {
	if p.PBest == nil {
		p.PBest = append([]float64(nil), p.Last.X...)
		p.PBestObjs = append([]float64(nil), p.Last.Objectives...)
		return
	}
	if model.Dominates(p.PBestObjs, p.Last.Objectives) {
		return
	}
	p.PBest = append([]float64(nil), p.Last.X...)
	p.PBestObjs = append([]float64(nil), p.Last.Objectives...)
}

// move applies the classical PSO velocity/position update of spec.md
// §4.5 step 5, drawing the global-best reference uniformly at random
// from the archive for each particle independently.
func (s *Swarm) move(p *Particle) {
	entries := s.archive.Entries()
	gbest := entries[s.Rand.Intn(len(entries))].Candidate.X

	for i := range p.X {
		r1 := s.Rand.Float64()
		r2 := s.Rand.Float64()
		p.V[i] = s.Params.W*p.V[i] +
			s.Params.C1*r1*(p.PBest[i]-p.X[i]) +
			s.Params.C2*r2*(gbest[i]-p.X[i])
		p.X[i] += p.V[i]
	}
	clip(p.X, s.Params.LB, s.Params.UB)
}
