// Package epsilon implements the ε-Constraint Driver: an N-step sweep
// of nonlinear-program solves atop a PSO parent solution, each solving
// a pollutant-reduction-constrained cost minimization over the
// efficiency-BMP share representation (spec.md §4.6).
package epsilon

import (
	"github.com/msucast/bmpopt/internal/catalog"
	"github.com/msucast/bmpopt/internal/encoding"
	"github.com/msucast/bmpopt/internal/model"
)

// Model is the NLP's problem data: the efficiency-only decision
// vector layout, the catalog it was built against, and the target
// pollutant.
type Model struct {
	Layout    *encoding.Layout
	Catalog   *catalog.Catalog
	Pollutant string

	groups []encoding.EfficiencyGroupInfo
}

// NewModel prepares a Model from an efficiency-only layout (spec.md
// §4.6: "the decision vector is the efficiency-BMP share
// representation ... over the remaining (selected-BMP-filtered)
// parcel set").
func NewModel(layout *encoding.Layout, cat *catalog.Catalog, pollutant string) *Model {
	return &Model{Layout: layout, Catalog: cat, Pollutant: pollutant, groups: layout.EfficiencyGroups()}
}

// N is the NLP's variable count.
func (m *Model) N() int { return m.Layout.N() }

// Cost returns total_cost(x), the ε-constraint objective: each
// treated BMP's amount (share × a parcel key's baseline acreage)
// times its state/BMP unit cost, summed over every group (spec.md
// §4.6 "Objective").
func (m *Model) Cost(x []float64) float64 {
	var cost float64
	for _, g := range m.groups {
		sh := encoding.Shares(x, g.SlackIdx, g.BMPIdx)
		baseline := m.Catalog.Amount[g.Key]
		state := m.Catalog.ParcelGeo[g.Key].State
		for i, bmp := range g.BMPs {
			amount := sh[i] * baseline
			cost += amount * m.Catalog.BMPCost[model.StateBMP{State: state, BMP: bmp}]
		}
	}
	return cost
}

// ResidualLoad estimates residual_load(x) for the configured
// pollutant: each valid efficiency key's baseline load (its amount
// times phi, the same quantity catalog.SumLoadValid sums) is scaled
// by its fraction untreated by any group (groups are modeled as
// independent treatment stages whose untreated fractions multiply,
// the standard BMP treatment-train approximation), plus the fixed
// SumLoadInvalid contribution from keys with no applicable group
// (spec.md §4.1). This is the local NLP surrogate for the value the
// simulator would otherwise return; it is not dispatched per solver
// iteration (spec.md §4.6 only dispatches after the sweep completes).
func (m *Model) ResidualLoad(x []float64) float64 {
	total := m.Catalog.SumLoadInvalid[m.Pollutant]

	order := make([]string, 0)
	perKey := make(map[string][]encoding.EfficiencyGroupInfo)
	for _, g := range m.groups {
		s := g.Key.String()
		if _, ok := perKey[s]; !ok {
			order = append(order, s)
		}
		perKey[s] = append(perKey[s], g)
	}

	for _, s := range order {
		groups := perKey[s]
		key := groups[0].Key
		phi := m.Catalog.Phi[key][m.Pollutant]
		if phi == 0 {
			continue
		}
		untreated := 1.0
		for _, g := range groups {
			sh := encoding.Shares(x, g.SlackIdx, g.BMPIdx)
			var sum float64
			for _, v := range sh {
				sum += v
			}
			untreated *= 1 - sum
		}
		total += m.Catalog.Amount[key] * phi * untreated
	}
	return total
}

// GroupShareSums returns, for each group, Σ shares (used by the
// per-group ≤1 penalty term and by JacobianNNZ).
func (m *Model) GroupShareSums(x []float64) []float64 {
	out := make([]float64, len(m.groups))
	for i, g := range m.groups {
		sh := encoding.Shares(x, g.SlackIdx, g.BMPIdx)
		var sum float64
		for _, s := range sh {
			sum += s
		}
		out[i] = sum
	}
	return out
}

// LandRows converts the efficiency shares at x into land-schema rows
// for the ε-constraint sweep's merge step (spec.md §4.6 step 3, "the
// solver's emitted land-BMP rows"): the NLP's efficiency BMPs are
// per-parcel practices written into the same land table the PSO layer
// uses, amount = share × the parcel key's baseline acreage, emitted
// when it strictly exceeds the 1-unit threshold shared with the
// Encoding Layer.
func (m *Model) LandRows(x []float64) []model.LandRow {
	const emitThreshold = 1.0
	var rows []model.LandRow
	for _, g := range m.groups {
		sh := encoding.Shares(x, g.SlackIdx, g.BMPIdx)
		baseline := m.Catalog.Amount[g.Key]
		for i, bmp := range g.BMPs {
			amount := sh[i] * baseline
			if amount <= emitThreshold {
				continue
			}
			rows = append(rows, model.LandRow{
				LRSeg:      g.Key.LRSeg,
				Agency:     g.Key.Agency,
				LoadSource: g.Key.LoadSource,
				BMP:        bmp,
				Amount:     amount,
			})
		}
	}
	return rows
}

// JacobianNNZ reports the Jacobian sparsity count named in spec.md
// §4.6: 2*nvars plus, for every group whose share sum currently
// exceeds 1 (over-limit groups), the size of that group. It is a
// diagnostic only — gonum's optimize.LBFGS has no sparse-Jacobian
// input, so this is logged, not fed to the solver.
func (m *Model) JacobianNNZ(x []float64) int {
	nnz := 2 * m.N()
	sums := m.GroupShareSums(x)
	for i, sum := range sums {
		if sum > 1 {
			nnz += len(m.groups[i].BMPs) + 1 // +1 for the group's slack variable
		}
	}
	return nnz
}
