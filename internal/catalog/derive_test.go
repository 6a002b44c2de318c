package catalog

import (
	"testing"

	"github.com/msucast/bmpopt/internal/model"
)

func TestDeriveEfficiencySplitsValidInvalid(t *testing.T) {
	keyValid := model.ParcelKey{LRSeg: 1, Agency: 1, LoadSource: 10}
	keyInvalid := model.ParcelKey{LRSeg: 1, Agency: 1, LoadSource: 20}

	cat := &Catalog{
		Amount: map[model.ParcelKey]float64{
			keyValid:   100,
			keyInvalid: 50,
		},
		Phi: map[model.ParcelKey]map[string]float64{
			keyInvalid: {"EoS-N": 0.2},
		},
		Efficiency: map[model.ParcelKey][]model.EfficiencyGroup{
			keyValid:   {{GroupID: 1, BMPs: []int{7, 9}}},
			keyInvalid: {{GroupID: 1, BMPs: []int{99}}},
		},
		SelectedBMPs: map[int]bool{7: true, 9: true},
	}

	deriveEfficiency(cat)

	if _, ok := cat.ValidEfficiencyKeys[keyValid]; !ok {
		t.Errorf("expected %v to be a valid efficiency key", keyValid)
	}
	if _, ok := cat.ValidEfficiencyKeys[keyInvalid]; ok {
		t.Errorf("expected %v to be invalid (no selected BMP in its groups)", keyInvalid)
	}
	want := 50.0 * 0.2
	if got := cat.SumLoadInvalid["EoS-N"]; got != want {
		t.Errorf("SumLoadInvalid[EoS-N] = %v, want %v", got, want)
	}
}

func TestDeriveLandConversionFiltersBelowThreshold(t *testing.T) {
	// pct_by_valid_load is keyed by load source alone (not by the full
	// parcel key), per original_source/src/scenario.cpp's
	// compute_lc_keys, so each scenario below varies the load source.
	keepKey := model.ParcelKey{LRSeg: 1, Agency: 1, LoadSource: 5}
	dropLowPctKey := model.ParcelKey{LRSeg: 1, Agency: 1, LoadSource: 6}
	dropNoConversionKey := model.ParcelKey{LRSeg: 1, Agency: 1, LoadSource: 99}

	cat := &Catalog{
		Amount: map[model.ParcelKey]float64{
			keepKey:             100,
			dropLowPctKey:       100,
			dropNoConversionKey: 100,
		},
		PctByValidLoad: map[int]float64{
			5:  50, // above the 10.0 threshold
			6:  5,  // below the 10.0 threshold
			99: 90, // above threshold, but no conversion destination configured
		},
		LandConversionTo: map[int][]model.LandConversionBMP{
			5: {{ToLoadSource: 6, BMPID: 1}},
			6: {{ToLoadSource: 7, BMPID: 1}},
		},
	}

	deriveLandConversion(cat)

	found := make(map[model.ParcelKey]bool)
	for _, k := range cat.ValidLandConversionKeys {
		found[k] = true
	}
	if !found[keepKey] {
		t.Errorf("expected %v to survive the land-conversion filter", keepKey)
	}
	if found[dropLowPctKey] {
		t.Errorf("expected %v to be dropped (pct below threshold)", dropLowPctKey)
	}
	if found[dropNoConversionKey] {
		t.Errorf("expected %v to be dropped (no conversion destinations)", dropNoConversionKey)
	}
}
