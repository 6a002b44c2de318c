package encoding

import (
	"errors"

	"github.com/msucast/bmpopt/internal/catalog"
	"github.com/msucast/bmpopt/internal/model"
)

// ErrNoAssignments is returned when any enabled land-conversion,
// animal or manure table would be empty for a given candidate
// (spec.md §7 item 2): the
// candidate's objective must be set to the sentinel value and it must
// be excluded from dispatch.
var ErrNoAssignments = errors.New("encoding: no BMP assignment cleared the emission threshold")

// ManureTransportBMPID is the fixed BMP id used to label manure
// transport rows. The reference data does not vary this per
// candidate; it is a property of the manure-transport program itself.
const ManureTransportBMPID = 1

// Encode decodes x into the four BMP-assignment tables and their cost
// decomposition (spec.md §4.2), returning ErrNoAssignments if any
// enabled land-conversion, animal or manure table is empty.
func (l *Layout) Encode(x []float64, cat *catalog.Catalog) (model.Tables, model.CostBreakdown, error) {
	var tables model.Tables
	var cost model.CostBreakdown

	if l.EfficiencyEnabled {
		tables.Efficiency = l.NormalizeEfficiency(x)
	}
	if l.LandEnabled {
		rows, minus, plus, c := l.NormalizeLandConversion(x, cat)
		tables.Land = rows
		tables.AmountMinus = minus
		tables.AmountPlus = plus
		cost.LandCost = c
	}
	if l.AnimalEnabled {
		rows, c := l.NormalizeAnimal(x, cat)
		tables.Animal = rows
		cost.AnimalCost = c
	}
	if l.ManureEnabled {
		rows, c := l.NormalizeManure(x, cat, ManureTransportBMPID)
		tables.Manure = rows
		cost.ManureCost = c
	}

	// Only the three tables the Scenario Writer turns into dispatch
	// files (land, animal, manure) count toward "no assignments":
	// efficiency shares feed the pollutant model directly and are
	// never written as a standalone file (spec.md §4.3). Each enabled
	// category is checked independently (spec.md:209 "at least one of
	// the four tables would be empty"; original_source/src/pso.cpp's
	// PSO::evaluate() sentinels the whole particle the moment any one
	// enabled block's file would be missing, regardless of the other
	// blocks) rather than only when all three are empty together.
	if l.LandEnabled && len(tables.Land) == 0 {
		return tables, cost, ErrNoAssignments
	}
	if l.AnimalEnabled && len(tables.Animal) == 0 {
		return tables, cost, ErrNoAssignments
	}
	if l.ManureEnabled && len(tables.Manure) == 0 {
		return tables, cost, ErrNoAssignments
	}
	return tables, cost, nil
}
