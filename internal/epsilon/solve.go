package epsilon

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// ErrSolverFailed marks a step whose L-BFGS solve did not converge
// (spec.md §7 item 5): the step's outputs are skipped and the sweep
// continues.
var ErrSolverFailed = errors.New("epsilon: solver did not converge")

// penaltyWeight scales the quadratic penalty terms folded into the
// objective in place of gonum/optimize's lack of native nonlinear
// constraint support (spec.md §4.6 "Nonlinear program"; recorded as a
// design decision in DESIGN.md rather than left implicit).
const penaltyWeight = 1e6

// solve runs L-BFGS against model's objective for the given residual
// load cap (epsilon) and a starting point x0, mutating a copy of x0 in
// place and returning the converged vector.
func solve(model *Model, epsilonCap float64, x0 []float64) ([]float64, error) {
	penalizedObjective := func(x []float64) float64 {
		cost := model.Cost(x)

		residual := model.ResidualLoad(x)
		loadViol := math.Max(0, residual-epsilonCap)

		var groupViol float64
		for _, sum := range model.GroupShareSums(x) {
			v := math.Max(0, sum-1)
			groupViol += v * v
		}

		return cost + penaltyWeight*(loadViol*loadViol+groupViol)
	}

	problem := optimize.Problem{
		Func: penalizedObjective,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, penalizedObjective, x, nil)
		},
	}

	settings := &optimize.Settings{MajorIterations: 1000}
	method := &optimize.LBFGS{}

	x := append([]float64(nil), x0...)
	result, err := optimize.Minimize(problem, x, settings, method)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFailed, err)
	}
	if result.Status != optimize.Success && result.Status != optimize.FunctionConvergence && result.Status != optimize.GradientThreshold {
		return nil, fmt.Errorf("%w: status %v", ErrSolverFailed, result.Status)
	}
	return result.X, nil
}
