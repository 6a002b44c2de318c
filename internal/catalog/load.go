package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/msucast/bmpopt/internal/model"
	"github.com/parquet-go/parquet-go"
)

// manureNutrientRow is the fixed Parquet schema for the
// manure-nutrients table, per spec.md §6.
type manureNutrientRow struct {
	LrsegID          int32   `parquet:"LrsegId"`
	LoadSourceID     int32   `parquet:"LoadSourceId"`
	AnimalID         int32   `parquet:"AnimalId"`
	NutrientID       int32   `parquet:"NutrientId"`
	StoredManureDryLbs float64 `parquet:"StoredManureDryLbs"`
}

const nitrogenNutrientID = 1

// Load reads the base-scenario and scenario-selection documents (and,
// when manureEnabled is true, the county-adjacency and
// manure-nutrients tables), and computes the derived fields of
// spec.md §4.1. It is called once at process start; the returned
// Catalog is never mutated afterward.
func Load(baseScenarioPath, scenarioSelectionPath, countyAdjacencyPath, manureNutrientsPath string, manureEnabled bool) (*Catalog, error) {
	base, err := loadBaseScenario(baseScenarioPath)
	if err != nil {
		return nil, err
	}
	sel, err := loadScenarioSelection(scenarioSelectionPath)
	if err != nil {
		return nil, err
	}

	cat, err := build(base, sel)
	if err != nil {
		return nil, err
	}

	if manureEnabled {
		adj, err := loadCountyAdjacency(countyAdjacencyPath)
		if err != nil {
			return nil, err
		}
		cat.CountyAdjacency = adj

		inv, err := loadManureInventory(manureNutrientsPath, cat.ManureCounties, adj)
		if err != nil {
			return nil, err
		}
		cat.ManureInventory = inv
	}

	deriveEfficiency(cat)
	deriveLandConversion(cat)

	return cat, nil
}

func loadBaseScenario(path string) (*BaseScenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Field: "base_scenario", Err: err}
	}
	defer f.Close()
	var b BaseScenario
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, &ConfigError{Field: "base_scenario", Err: err}
	}
	if err := requireBaseScenarioFields(b); err != nil {
		return nil, err
	}
	return &b, nil
}

func requireBaseScenarioFields(b BaseScenario) error {
	if len(b.Amount) == 0 {
		return missingField("amount")
	}
	if len(b.BMPCost) == 0 {
		return missingField("bmp_cost")
	}
	if len(b.LRSeg) == 0 {
		return missingField("lrseg")
	}
	if b.ScenarioDataStr == "" {
		return missingField("scenario_data_str")
	}
	if len(b.Efficiency) == 0 {
		return missingField("efficiency")
	}
	if len(b.Phi) == 0 {
		return missingField("phi")
	}
	if len(b.PctByValidLoad) == 0 {
		return missingField("pct_by_valid_load")
	}
	return nil
}

func loadScenarioSelection(path string) (*ScenarioSelection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Field: "scenario_selection", Err: err}
	}
	defer f.Close()
	var s ScenarioSelection
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, &ConfigError{Field: "scenario_selection", Err: err}
	}
	if len(s.SelectedBMPs) == 0 {
		return nil, missingField("selected_bmps")
	}
	return &s, nil
}

func loadCountyAdjacency(path string) (map[string][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Field: "county_adjacency", Err: err}
	}
	defer f.Close()
	var adj map[string][]int
	if err := json.NewDecoder(f).Decode(&adj); err != nil {
		return nil, &ConfigError{Field: "county_adjacency", Err: err}
	}
	return adj, nil
}

func loadManureInventory(path string, manureCounties map[string]bool, adjacency map[string][]int) (map[model.ManureKey]ManureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Field: "manure_nutrients", Err: err}
	}
	defer f.Close()

	rows, err := parquet.Read[manureNutrientRow](f, mustStat(f))
	if err != nil {
		return nil, &ConfigError{Field: "manure_nutrients", Err: err}
	}

	out := make(map[model.ManureKey]ManureRow)
	for _, r := range rows {
		if r.NutrientID != nitrogenNutrientID {
			continue
		}
		if r.StoredManureDryLbs <= 0 {
			continue
		}
		countyStr := fmt.Sprintf("%d", r.LrsegID)
		if len(manureCounties) > 0 && !manureCounties[countyStr] {
			continue
		}
		key := model.ManureKey{
			CountyFrom: int(r.LrsegID),
			LoadSource: int(r.LoadSourceID),
			AnimalID:   int(r.AnimalID),
		}
		neighbors := append([]int(nil), adjacency[countyStr]...)
		out[key] = ManureRow{DryLbs: r.StoredManureDryLbs, Neighbors: sortedInts(neighbors)}
	}
	return out, nil
}

func mustStat(f *os.File) int64 {
	st, err := f.Stat()
	if err != nil {
		return 0
	}
	return st.Size()
}
