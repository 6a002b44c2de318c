package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadCosts loads "<uuid>_costs.json" (spec.md §4.7 step 1).
func ReadCosts(dir, uuid string) (Costs, error) {
	path := filepath.Join(dir, uuid+"_costs.json")
	f, err := os.Open(path)
	if err != nil {
		return Costs{}, fmt.Errorf("scenario: opening %s: %w", path, err)
	}
	defer f.Close()
	var c Costs
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return Costs{}, fmt.Errorf("scenario: decoding %s: %w", path, err)
	}
	return c, nil
}
