package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeJSON marshals v and writes it to dir/name, returning the full path.
func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// TestLoadParsesPlainIntPctByValidLoadKeys round-trips a
// pct_by_valid_load document with plain single-int keys (e.g. "7",
// matching original_source/src/scenario.cpp:645-647's direct
// std::stoi(key) of the raw JSON key) through catalog.Load, and
// confirms the 10.0-scale threshold in deriveLandConversion correctly
// keeps a parcel at 50.0 and drops one at 5.0.
func TestLoadParsesPlainIntPctByValidLoadKeys(t *testing.T) {
	dir := t.TempDir()

	base := map[string]interface{}{
		"amount": map[string]float64{
			"1_1_5": 100,
			"1_1_6": 100,
		},
		"bmp_cost":          map[string]float64{"51_7": 100},
		"lrseg":             []int{1},
		"scenario_data_str": "x",
		"u_u_group":         map[string]int{},
		"counties":          map[string]int{},
		"counties2":         map[string]interface{}{},
		"efficiency": map[string][]map[string]interface{}{
			"1_1_5": {{"group_id": 1, "bmps": []int{7}}},
		},
		"phi": map[string]map[string]float64{
			"1_1_5": {"N": 1.0},
		},
		"land_conversion_to": map[string][]map[string]interface{}{
			"5": {{"to_load_source": 6, "bmp_id": 7}},
			"6": {{"to_load_source": 7, "bmp_id": 7}},
		},
		// Plain single-int keys, not 3-part composite parcel keys.
		"pct_by_valid_load": map[string]float64{
			"5": 50.0,
			"6": 5.0,
		},
	}
	sel := map[string]interface{}{
		"selected_bmps":             []int{7},
		"bmp_cost":                  map[string]float64{},
		"selected_reduction_target": 0.2,
		"sel_pollutant":             "N",
		"target_pct":                0.2,
		"manure_counties":           []string{},
	}

	basePath := writeJSON(t, dir, "base_scenario.json", base)
	selPath := writeJSON(t, dir, "scenario_selection.json", sel)

	cat, err := Load(basePath, selPath, "", "", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := cat.PctByValidLoad[5], 50.0; got != want {
		t.Errorf("PctByValidLoad[5] = %v, want %v", got, want)
	}
	if got, want := cat.PctByValidLoad[6], 5.0; got != want {
		t.Errorf("PctByValidLoad[6] = %v, want %v", got, want)
	}

	found := make(map[string]bool)
	for _, k := range cat.ValidLandConversionKeys {
		found[fmt.Sprintf("%d_%d_%d", k.LRSeg, k.Agency, k.LoadSource)] = true
	}
	if !found["1_1_5"] {
		t.Errorf("expected 1_1_5 (pct 50.0 > threshold) to survive, got %v", cat.ValidLandConversionKeys)
	}
	if found["1_1_6"] {
		t.Errorf("expected 1_1_6 (pct 5.0 <= threshold) to be dropped, got %v", cat.ValidLandConversionKeys)
	}
}
