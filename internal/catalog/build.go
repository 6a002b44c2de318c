package catalog

import (
	"sort"

	"github.com/msucast/bmpopt/internal/model"
)

func sortedInts(s []int) []int {
	sort.Ints(s)
	return s
}

// build converts the on-the-wire JSON documents into the typed,
// key-parsed Catalog maps. It does not yet compute the derived
// valid/invalid splits (see derive.go).
func build(base *BaseScenario, sel *ScenarioSelection) (*Catalog, error) {
	cat := &Catalog{
		Amount:           make(map[model.ParcelKey]float64, len(base.Amount)),
		BMPCost:          make(map[model.StateBMP]float64, len(base.BMPCost)),
		AnimalUnit:       make(map[model.AnimalKey]float64, len(base.AnimalUnit)),
		AnimalComplete:   make(map[model.AnimalKey][]int, len(base.AnimalComplete)),
		UUGroup:          make(map[int]int, len(base.UUGroup)),
		ParcelGeo:        make(map[model.ParcelKey]ParcelGeo, len(base.Counties2)),
		Efficiency:       make(map[model.ParcelKey][]model.EfficiencyGroup, len(base.Efficiency)),
		Phi:              make(map[model.ParcelKey]map[string]float64, len(base.Phi)),
		LandConversionTo: make(map[int][]model.LandConversionBMP, len(base.LandConversionTo)),
		PctByValidLoad:   make(map[int]float64, len(base.PctByValidLoad)),
		SelectedBMPs:     make(map[int]bool, len(sel.SelectedBMPs)),
		ManureCounties:   make(map[string]bool, len(sel.ManureCounties)),
		CountyState:      make(map[int]int, len(base.Counties)),
	}

	for k, v := range base.Counties {
		county, err := splitInts(k, 1)
		if err != nil {
			return nil, &ConfigError{Field: "counties", Err: err}
		}
		cat.CountyState[county[0]] = v
	}

	for k, v := range base.Amount {
		pk, err := parseParcelKey(k)
		if err != nil {
			return nil, &ConfigError{Field: "amount", Err: err}
		}
		cat.Amount[pk] = v
	}
	for k, v := range base.BMPCost {
		sb, err := parseStateBMP(k)
		if err != nil {
			return nil, &ConfigError{Field: "bmp_cost", Err: err}
		}
		cat.BMPCost[sb] = v
	}
	// scenario-selection bmp_cost overrides the base-scenario values.
	for k, v := range sel.BMPCost {
		sb, err := parseStateBMP(k)
		if err != nil {
			return nil, &ConfigError{Field: "selected_bmps.bmp_cost", Err: err}
		}
		cat.BMPCost[sb] = v
	}
	for k, v := range base.AnimalUnit {
		ak, err := parseAnimalKey(k)
		if err != nil {
			return nil, &ConfigError{Field: "animal_unit", Err: err}
		}
		cat.AnimalUnit[ak] = v
	}
	for k, v := range base.AnimalComplete {
		ak, err := parseAnimalKey(k)
		if err != nil {
			return nil, &ConfigError{Field: "animal_complete", Err: err}
		}
		cat.AnimalComplete[ak] = v
	}
	for k, v := range base.UUGroup {
		ls, err := splitInts(k, 1)
		if err != nil {
			return nil, &ConfigError{Field: "u_u_group", Err: err}
		}
		cat.UUGroup[ls[0]] = v
	}
	for k, v := range base.Counties2 {
		pk, err := parseParcelKey(k)
		if err != nil {
			return nil, &ConfigError{Field: "counties2", Err: err}
		}
		cat.ParcelGeo[pk] = v
	}
	for k, groups := range base.Efficiency {
		pk, err := parseParcelKey(k)
		if err != nil {
			return nil, &ConfigError{Field: "efficiency", Err: err}
		}
		for _, g := range groups {
			cat.Efficiency[pk] = append(cat.Efficiency[pk], model.EfficiencyGroup{GroupID: g.GroupID, BMPs: append([]int(nil), g.BMPs...)})
		}
	}
	for k, v := range base.Phi {
		pk, err := parseParcelKey(k)
		if err != nil {
			return nil, &ConfigError{Field: "phi", Err: err}
		}
		cat.Phi[pk] = v
	}
	for k, opts := range base.LandConversionTo {
		ls, err := splitInts(k, 1)
		if err != nil {
			return nil, &ConfigError{Field: "land_conversion_to", Err: err}
		}
		for _, o := range opts {
			cat.LandConversionTo[ls[0]] = append(cat.LandConversionTo[ls[0]], model.LandConversionBMP{ToLoadSource: o.ToLoadSource, BMPID: o.BMPID})
		}
	}
	for k, v := range base.PctByValidLoad {
		ls, err := splitInts(k, 1)
		if err != nil {
			return nil, &ConfigError{Field: "pct_by_valid_load", Err: err}
		}
		cat.PctByValidLoad[ls[0]] = v
	}

	for _, b := range sel.SelectedBMPs {
		cat.SelectedBMPs[b] = true
	}
	for _, c := range sel.ManureCounties {
		cat.ManureCounties[c] = true
	}
	cat.SelectedReductionTarget = sel.SelectedReductionTarget
	cat.SelPollutant = sel.SelPollutant
	cat.TargetPct = sel.TargetPct

	return cat, nil
}
