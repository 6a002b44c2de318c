package epsilon

import (
	"context"
	"time"

	"github.com/msucast/bmpopt/internal/dispatch"
	"github.com/msucast/bmpopt/internal/model"
	"github.com/msucast/bmpopt/internal/scenario"
)

// StepResult is one sweep step's outcome: the generated UUID, the
// rho value it targeted, and (once dispatched) its total cost and
// load vector.
type StepResult struct {
	UUID  string
	Rho   float64
	Costs scenario.Costs
	Loads []float64
	Err   error
}

// Sweep runs the N-step ε-sweep of spec.md §4.6 atop parentUUID, whose
// files already live in dir.
func Sweep(ctx context.Context, em *Model, writer *scenario.Writer, dir, parentUUID string, rho float64, steps int, sumLoadValid float64, logDir string) []StepResult {
	results := make([]StepResult, 0, steps)

	x0 := make([]float64, em.N())
	for i := range x0 {
		x0[i] = 0.5
	}

	rhos := rhoSteps(rho, steps)
	for i, rhoI := range rhos {
		uuid := newStepUUID()

		log, f, err := stepLogger(logDir, i)
		if err != nil {
			results = append(results, StepResult{UUID: uuid, Rho: rhoI, Err: err})
			continue
		}

		epsilonCap := (1 - rhoI) * sumLoadValid
		x, err := solve(em, epsilonCap, x0)
		if err != nil {
			log.WithField("rho", rhoI).WithError(err).Warn("epsilon: step did not converge, skipping")
			f.Close()
			results = append(results, StepResult{UUID: uuid, Rho: rhoI, Err: err})
			continue
		}
		log.WithFields(map[string]interface{}{
			"rho":           rhoI,
			"cost":          em.Cost(x),
			"residual_load": em.ResidualLoad(x),
			"jacobian_nnz":  em.JacobianNNZ(x),
		}).Info("epsilon: step converged")
		f.Close()

		costs, err := applyStep(em, writer, dir, parentUUID, uuid, x)
		if err != nil {
			results = append(results, StepResult{UUID: uuid, Rho: rhoI, Err: err})
			continue
		}
		results = append(results, StepResult{UUID: uuid, Rho: rhoI, Costs: costs})
	}
	return results
}

// applyStep performs spec.md §4.6 steps 3-5 for one already-solved
// decision vector x: merge the solver's land rows into the parent's,
// copy the parent's animal/manure files verbatim, and merge the cost
// JSONs. Factored out of Sweep so it can be exercised directly against
// a known x, independent of whether the L-BFGS solve converges.
func applyStep(em *Model, writer *scenario.Writer, dir, parentUUID, uuid string, x []float64) (scenario.Costs, error) {
	efCost := em.Cost(x)
	solverUUID := uuid + "_solver"
	if err := writer.WriteLandJSON(solverUUID, em.LandRows(x)); err != nil {
		return scenario.Costs{}, err
	}

	merged, err := scenario.MergeLandJSON(dir, parentUUID, solverUUID, uuid)
	if err != nil {
		return scenario.Costs{}, err
	}
	if err := scenario.WriteLandParquetFromJSON(dir, uuid, merged, em.Catalog); err != nil {
		return scenario.Costs{}, err
	}
	if err := scenario.CopyVerbatim(dir, parentUUID, uuid, "_impbmpsubmittedanimal"); err != nil {
		return scenario.Costs{}, err
	}
	if err := scenario.CopyVerbatim(dir, parentUUID, uuid, "_impbmpsubmittedmanuretransport"); err != nil {
		return scenario.Costs{}, err
	}
	return scenario.MergeCosts(dir, parentUUID, uuid, efCost)
}

// Dispatch sends every step result's UUID to the simulator fleet,
// awaits the reply, and fills in each result's Loads (spec.md §4.6,
// "After all steps ... dispatch all u_i to the simulator fleet").
func Dispatch(ctx context.Context, client *dispatch.Client, results []StepResult, timeout time.Duration) []StepResult {
	uuids := make([]string, 0, len(results))
	byUUID := make(map[string]*StepResult, len(results))
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		uuids = append(uuids, results[i].UUID)
		byUUID[results[i].UUID] = &results[i]
	}
	if len(uuids) == 0 {
		return results
	}

	failures := client.Batch(ctx, uuids, timeout)
	loads := client.LastLoads()
	for _, uuid := range uuids {
		r := byUUID[uuid]
		if err, failed := failures[uuid]; failed {
			r.Err = err
			continue
		}
		r.Loads = loads[uuid]
	}
	return results
}

func newStepUUID() string { return model.NewUUID() }

// rhoSteps computes the N equally spaced reduction targets of spec.md
// §4.6 step 1: rho_i = rho * (i+1) / N for i = 0, ..., N-1.
func rhoSteps(rho float64, steps int) []float64 {
	out := make([]float64, steps)
	for i := range out {
		out[i] = rho * float64(i+1) / float64(steps)
	}
	return out
}
