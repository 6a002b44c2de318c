package catalog

import "github.com/msucast/bmpopt/internal/model"

// minValidLoadPct is the 10% area-fraction threshold of spec.md §4.1,
// on the same 0-100 percentage scale as the stored pct_by_valid_load
// values: original_source/src/scenario.cpp:48 declares
// "const double MIN_LC_THRESHOLD = 10.0;" and compares it directly
// against the stored percentages (scenario.cpp:348-350) with no
// rescaling, so pct_by_valid_load is assumed to already be on a 0-100
// scale rather than 0-1.
const minValidLoadPct = 10.0

// deriveEfficiency computes ValidEfficiencyKeys, SumLoadInvalid, and
// SumLoadValid (spec.md §4.1 and §4.6): for each efficiency key, the
// applicable BMP groups are filtered to those intersecting the
// selected-BMP set. Keys with no remaining groups are "invalid";
// their baseline load is summed into SumLoadInvalid per pollutant.
// Keys that remain valid contribute their baseline load to
// SumLoadValid, the sum_load_valid[pollutant] term the ε-Constraint
// Driver's reduction target ρ is applied against.
func deriveEfficiency(cat *Catalog) {
	cat.ValidEfficiencyKeys = make(map[model.ParcelKey][]model.EfficiencyGroup, len(cat.Efficiency))
	cat.SumLoadInvalid = make(map[string]float64)
	cat.SumLoadValid = make(map[string]float64)

	for key, groups := range cat.Efficiency {
		var valid []model.EfficiencyGroup
		for _, g := range groups {
			if groupIntersectsSelected(g, cat.SelectedBMPs) {
				valid = append(valid, g)
			}
		}
		amount := cat.Amount[key]
		if len(valid) > 0 {
			cat.ValidEfficiencyKeys[key] = valid
			for pollutant, phi := range cat.Phi[key] {
				cat.SumLoadValid[pollutant] += amount * phi
			}
			continue
		}
		for pollutant, phi := range cat.Phi[key] {
			cat.SumLoadInvalid[pollutant] += amount * phi
		}
	}
}

func groupIntersectsSelected(g model.EfficiencyGroup, selected map[int]bool) bool {
	for _, b := range g.BMPs {
		if selected[b] {
			return true
		}
	}
	return false
}

// deriveLandConversion computes ValidLandConversionKeys (spec.md
// §4.1): only parcel keys whose load source has at least one
// configured conversion destination AND whose load source's
// fractional parcel-area contribution (pct_by_valid_load, keyed by
// load source alone per original_source/src/scenario.cpp's
// compute_lc_keys) exceeds minValidLoadPct are retained. Candidate
// parcel keys come from cat.Amount, the full set of known parcels,
// mirroring compute_lc_keys iterating every land_conversion_from_bmp_to
// entry and checking its load source against pct_by_valid_load_.
func deriveLandConversion(cat *Catalog) {
	var valid []model.ParcelKey
	for key := range cat.Amount {
		if _, ok := cat.LandConversionTo[key.LoadSource]; !ok {
			continue
		}
		pct, ok := cat.PctByValidLoad[key.LoadSource]
		if !ok || pct <= minValidLoadPct {
			continue
		}
		valid = append(valid, key)
	}
	cat.ValidLandConversionKeys = valid
}
