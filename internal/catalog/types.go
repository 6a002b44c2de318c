// Package catalog loads the immutable per-run Reference Catalog: the
// base-scenario document, the scenario-selection document, and
// (optionally) the county-adjacency and manure-nutrients tables.
package catalog

import "github.com/msucast/bmpopt/internal/model"

// ParcelGeo is the (fips, state, county, geography) tuple a parcel key
// maps to.
type ParcelGeo struct {
	FIPS      string
	State     int
	County    int
	Geography int
}

// BaseScenario is the required top-level shape of the base-scenario
// JSON document named in spec.md §6.
type BaseScenario struct {
	Amount           map[string]float64            `json:"amount"`
	BMPCost          map[string]float64             `json:"bmp_cost"`
	AnimalUnit       map[string]float64             `json:"animal_unit"`
	AnimalComplete   map[string][]int               `json:"animal_complete"`
	LRSeg            []int                          `json:"lrseg"`
	ScenarioDataStr  string                         `json:"scenario_data_str"`
	UUGroup          map[string]int                 `json:"u_u_group"`
	Counties         map[string]int                 `json:"counties"`
	Counties2        map[string]ParcelGeo           `json:"counties2"`
	Efficiency       map[string][]EfficiencyGroupDoc `json:"efficiency"`
	Phi              map[string]map[string]float64   `json:"phi"`
	LandConversionTo map[string][]LandConversionDoc  `json:"land_conversion_to"`
	PctByValidLoad   map[string]float64              `json:"pct_by_valid_load"`
}

// EfficiencyGroupDoc is the on-the-wire shape of one efficiency BMP
// group, as read from the base-scenario document.
type EfficiencyGroupDoc struct {
	GroupID int   `json:"group_id"`
	BMPs    []int `json:"bmps"`
}

// LandConversionDoc is the on-the-wire shape of one land-conversion
// destination option for a given source load source.
type LandConversionDoc struct {
	ToLoadSource int `json:"to_load_source"`
	BMPID        int `json:"bmp_id"`
}

// ScenarioSelection is the required shape of the scenario-selection
// JSON document named in spec.md §6.
type ScenarioSelection struct {
	SelectedBMPs            []int              `json:"selected_bmps"`
	BMPCost                 map[string]float64 `json:"bmp_cost"`
	SelectedReductionTarget float64            `json:"selected_reduction_target"`
	SelPollutant            string             `json:"sel_pollutant"`
	TargetPct               float64            `json:"target_pct"`
	ManureCounties          []string           `json:"manure_counties"`
}

// ManureRow is one surviving row of the manure-nutrients table, after
// the nitrogen / manure-county / positive-amount filter of spec.md
// §4.1.
type ManureRow struct {
	DryLbs    float64
	Neighbors []int // sorted neighbor counties, from the adjacency list
}

// Catalog is the immutable, per-run Reference Catalog (spec.md §4.1).
type Catalog struct {
	Amount           map[model.ParcelKey]float64
	BMPCost          map[model.StateBMP]float64
	AnimalUnit       map[model.AnimalKey]float64
	AnimalComplete   map[model.AnimalKey][]int
	UUGroup          map[int]int
	// CountyState maps a county id (as used in AnimalKey.County and
	// ManureKey.CountyFrom) to its state id, for unit-cost lookups
	// that are not reachable through a ParcelKey.
	CountyState      map[int]int
	ParcelGeo        map[model.ParcelKey]ParcelGeo
	Efficiency       map[model.ParcelKey][]model.EfficiencyGroup
	Phi              map[model.ParcelKey]map[string]float64
	LandConversionTo map[int][]model.LandConversionBMP
	// PctByValidLoad is keyed by load source alone (original_source/
	// include/scenario.h's pct_by_valid_load_ is
	// std::unordered_map<int, double>, loaded via a direct std::stoi of
	// the raw JSON key with no splitting), not by the full 3-part
	// parcel key.
	PctByValidLoad map[int]float64

	SelectedBMPs            map[int]bool
	SelectedReductionTarget float64
	SelPollutant            string
	TargetPct               float64
	ManureCounties          map[string]bool

	CountyAdjacency map[string][]int
	ManureInventory map[model.ManureKey]ManureRow

	// ValidEfficiencyKeys is the per-parcel-key list of efficiency BMP
	// groups that intersect SelectedBMPs.
	ValidEfficiencyKeys map[model.ParcelKey][]model.EfficiencyGroup
	// SumLoadInvalid is the fixed baseline pollutant load contributed
	// by efficiency keys with no remaining applicable BMP group,
	// keyed by pollutant name.
	SumLoadInvalid map[string]float64
	// SumLoadValid is the baseline pollutant load of efficiency keys
	// that still have an applicable BMP group, keyed by pollutant
	// name. This is sum_load_valid[pollutant] in spec.md §4.6, the
	// quantity the ε-constraint sweep's reduction target ρ is applied
	// against.
	SumLoadValid map[string]float64

	// ValidLandConversionKeys is the parcel-key list surviving the
	// load-source and 10% area-fraction filters of spec.md §4.1.
	ValidLandConversionKeys []model.ParcelKey
}
