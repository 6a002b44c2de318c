package encoding

import (
	"github.com/msucast/bmpopt/internal/catalog"
	"github.com/msucast/bmpopt/internal/model"
)

// shares computes, for one slack+BMPs group, the normalized share of
// each BMP: x_bmp / (slack + Σ x_bmp). This guarantees Σ shares ≤ 1
// (the slack absorbs the unused fraction; the sum reaches 1 only when
// the slack is 0) and every share
// lies in [0,1], per spec.md §3 invariant 2.
func shares(x []float64, g group) []float64 {
	denom := x[g.slackIdx]
	for _, i := range g.bmpIdx {
		denom += x[i]
	}
	out := make([]float64, len(g.bmpIdx))
	if denom == 0 {
		return out
	}
	for i, idx := range g.bmpIdx {
		out[i] = x[idx] / denom
	}
	return out
}

// NormalizeEfficiency reads one slack + K BMP variables for every
// efficiency key and group, and stores the normalized shares. No cost
// is computed here: efficiency shares feed the pollutant model only
// (spec.md §4.2).
func (l *Layout) NormalizeEfficiency(x []float64) []model.EfficiencyShare {
	var out []model.EfficiencyShare
	for _, g := range l.efficiency {
		sh := shares(x, g.group)
		for i, bmp := range g.bmps {
			if sh[i] <= 0 {
				continue
			}
			out = append(out, model.EfficiencyShare{Key: g.key, GroupID: g.groupID, BMP: bmp, Share: sh[i]})
		}
	}
	return out
}

// NormalizeLandConversion reads slack + K variables per land-conversion
// key, computes per-destination normalized shares scaled by the
// category cap and the key's baseline amount, and emits a row when the
// resulting amount strictly exceeds the 1-unit threshold. It also
// maintains the amount_minus / amount_plus bookkeeping of spec.md §3
// invariant 4.
func (l *Layout) NormalizeLandConversion(x []float64, cat *catalog.Catalog) (rows []model.LandRow, amountMinus, amountPlus map[model.ParcelKey]float64, cost float64) {
	amountMinus = make(map[model.ParcelKey]float64)
	amountPlus = make(map[model.ParcelKey]float64)

	for _, g := range l.land {
		sh := shares(x, g.group)
		baseline := cat.Amount[g.key]
		state := cat.ParcelGeo[g.key].State
		for i, bmp := range g.bmps {
			amount := sh[i] * categoryCap * baseline
			if amount <= emitThreshold {
				continue
			}
			rows = append(rows, model.LandRow{
				LRSeg:      g.key.LRSeg,
				Agency:     g.key.Agency,
				LoadSource: g.key.LoadSource,
				BMP:        bmp,
				Amount:     amount,
			})
			amountMinus[g.key] += amount
			dest := model.ParcelKey{LRSeg: g.key.LRSeg, Agency: g.key.Agency, LoadSource: g.dest[i]}
			amountPlus[dest] += amount
			cost += amount * cat.BMPCost[model.StateBMP{State: state, BMP: bmp}]
		}
	}
	return rows, amountMinus, amountPlus, cost
}

// NormalizeAnimal reads slack + K variables per animal key, scales by
// the category cap and baseline animal-unit count, and emits a row
// when the resulting amount strictly exceeds the 1-unit threshold.
//
// BUG(parity): the cost contribution here is the flat per-row unit
// cost unit_cost[state,bmp], NOT amount * unit_cost[state,bmp] as for
// land and manure. This reproduces the observed MSUCast source
// behavior (original_source/nsga3-cbw/src/problemdef.cpp) and is
// flagged as spec.md §9 Open Question #1: it is almost certainly a
// bug in the original, but is intentionally NOT silently "fixed"
// here.
func (l *Layout) NormalizeAnimal(x []float64, cat *catalog.Catalog) (rows []model.AnimalRow, cost float64) {
	for _, g := range l.animal {
		sh := shares(x, g.group)
		baseline := cat.AnimalUnit[g.key]
		state := cat.CountyState[g.key.County]
		for i, bmp := range g.bmps {
			amount := sh[i] * categoryCap * baseline
			if amount <= emitThreshold {
				continue
			}
			rows = append(rows, model.AnimalRow{
				County:     g.key.County,
				LoadSource: g.key.LoadSource,
				AnimalID:   g.key.AnimalID,
				BMP:        bmp,
				Amount:     amount,
			})
			cost += cat.BMPCost[model.StateBMP{State: state, BMP: bmp}]
		}
	}
	return rows, cost
}

// NormalizeManure reads slack + K variables per manure key, where K
// ranges over the key's sorted neighbor counties. The stored dry-pound
// amount is converted to wet tons via
// amount_tons = (dry_lbs * share * categoryCap) / 2000. A row is
// emitted when the capped dry-pound amount (dry_lbs * share *
// categoryCap, before conversion to tons) strictly exceeds the 1-unit
// threshold.
//
// The unit-cost lookup uses the from-county's state, per spec.md §9
// Open Question #3 (original_source/nsga3-cbw/src/problemdef.cpp uses
// `from`; the physically correct choice is ambiguous and is not
// resolved here).
func (l *Layout) NormalizeManure(x []float64, cat *catalog.Catalog, bmpID int) (rows []model.ManureRow, cost float64) {
	for _, g := range l.manure {
		sh := shares(x, g.group)
		row := cat.ManureInventory[g.key]
		state := cat.CountyState[g.key.CountyFrom]
		for i, countyTo := range g.bmps {
			amountLbs := row.DryLbs * sh[i] * categoryCap
			if amountLbs <= emitThreshold {
				continue
			}
			amountTons := amountLbs / manureLbsPerTon
			rows = append(rows, model.ManureRow{
				CountyFrom: g.key.CountyFrom,
				CountyTo:   countyTo,
				LoadSource: g.key.LoadSource,
				AnimalID:   g.key.AnimalID,
				BMP:        bmpID,
				AmountTons: amountTons,
			})
			cost += amountTons * cat.BMPCost[model.StateBMP{State: state, BMP: bmpID}]
		}
	}
	return rows, cost
}
