package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/msucast/bmpopt/internal/catalog"
	"github.com/msucast/bmpopt/internal/model"
)

// ReadLandJSON loads the flat composite-key JSON shadow of a land
// table.
func ReadLandJSON(dir, uuid string) (map[string]float64, error) {
	return readJSONMap(filepath.Join(dir, uuid+"_impbmpsubmittedland.json"))
}

func readJSONMap(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m map[string]float64
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// MergeLandJSON appends the NLP solver's emitted land-BMP rows
// (solverUUID) to the parent's land-BMP rows (parentUUID), and writes
// the merged result as a new JSON shadow keyed by childUUID
// (spec.md §4.6 step 3). The merged Parquet file is produced
// separately by the caller via WriteLandParquetFromJSON, since the
// merge itself is most naturally expressed over the flat JSON shadow.
func MergeLandJSON(dir, parentUUID, solverUUID, childUUID string) (map[string]float64, error) {
	parent, err := ReadLandJSON(dir, parentUUID)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading parent land JSON: %w", err)
	}
	solver, err := ReadLandJSON(dir, solverUUID)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading solver land JSON: %w", err)
	}
	merged := make(map[string]float64, len(parent)+len(solver))
	for k, v := range parent {
		merged[k] += v
	}
	for k, v := range solver {
		merged[k] += v
	}
	if err := writeJSONMap(filepath.Join(dir, childUUID+"_impbmpsubmittedland.json"), merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// WriteLandParquetFromJSON writes the Parquet counterpart of a merged
// land JSON shadow (spec.md §4.6 step 3): each flat
// "lrseg_agency_loadsource_bmp" key is parsed back into a LandRow and
// enriched with catalog geography, matching Writer.Write's own
// encoding of the land schema.
func WriteLandParquetFromJSON(dir, uuid string, merged map[string]float64, cat *catalog.Catalog) error {
	rows := make([]model.LandRow, 0, len(merged))
	for k, amount := range merged {
		parts := strings.Split(k, "_")
		if len(parts) != 4 {
			return fmt.Errorf("scenario: malformed land JSON key %q", k)
		}
		vals := make([]int, 4)
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("scenario: parsing land JSON key %q: %w", k, err)
			}
			vals[i] = v
		}
		rows = append(rows, model.LandRow{LRSeg: vals[0], Agency: vals[1], LoadSource: vals[2], BMP: vals[3], Amount: amount})
	}
	return writeParquetFile(filepath.Join(dir, uuid+"_impbmpsubmittedland.parquet"), landRows(rows, cat))
}

func writeJSONMap(path string, m map[string]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(m)
}

// CopyVerbatim copies the parent's Parquet+JSON pair for the given
// base suffix (e.g. "_impbmpsubmittedanimal") to a new pair keyed by
// childUUID, byte-for-byte (spec.md §4.6 step 4).
func CopyVerbatim(dir, parentUUID, childUUID, suffix string) error {
	for _, ext := range []string{".parquet", ".json"} {
		src := filepath.Join(dir, parentUUID+suffix+ext)
		dst := filepath.Join(dir, childUUID+suffix+ext)
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("scenario: copying %s: %w", src, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// MergeCosts replaces the parent's ef_cost with newEfCost and carries
// the other cost components over unchanged (spec.md §4.6 step 5),
// writing the result as childUUID's costs JSON.
func MergeCosts(dir, parentUUID, childUUID string, newEfCost float64) (Costs, error) {
	f, err := os.Open(filepath.Join(dir, parentUUID+"_costs.json"))
	if err != nil {
		return Costs{}, fmt.Errorf("scenario: reading parent costs: %w", err)
	}
	var c Costs
	err = json.NewDecoder(f).Decode(&c)
	f.Close()
	if err != nil {
		return Costs{}, fmt.Errorf("scenario: decoding parent costs: %w", err)
	}
	c.EfficiencyCost = newEfCost
	c.Cost = c.EfficiencyCost + c.LandCost + c.AnimalCost + c.ManureCost

	out, err := os.Create(filepath.Join(dir, childUUID+"_costs.json"))
	if err != nil {
		return Costs{}, err
	}
	defer out.Close()
	if err := json.NewEncoder(out).Encode(c); err != nil {
		return Costs{}, err
	}
	return c, nil
}
