package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/msucast/bmpopt/internal/catalog"
	"github.com/msucast/bmpopt/internal/model"
	"github.com/parquet-go/parquet-go"
)

// ErrWrite marks a filesystem failure while writing scenario files
// (spec.md §7 item 6): the candidate must be marked failed.
type ErrWrite struct {
	UUID string
	Err  error
}

func (e *ErrWrite) Error() string {
	return fmt.Sprintf("scenario: writing files for candidate %s: %v", e.UUID, e.Err)
}

func (e *ErrWrite) Unwrap() error { return e.Err }

// Writer writes a candidate's decoded tables to the run's working
// directory.
type Writer struct {
	Dir string
	Cat *catalog.Catalog
}

// Write serializes tables and cost to the three Parquet+JSON pairs and
// the costs JSON named in spec.md §4.3/§6. It returns the set of base
// file names (without extension) that were actually written; a table
// with zero rows is not written at all, per spec.md §4.4 ("Candidates
// whose files were not written ... are excluded from the submitted
// set").
func (w *Writer) Write(uuid string, tables model.Tables, cost model.CostBreakdown) (written []string, err error) {
	if len(tables.Land) > 0 {
		rows := landRows(tables.Land, w.Cat)
		if err := w.writeParquetAndJSON(uuid+"_impbmpsubmittedland", rows, landJSONKeys(tables.Land)); err != nil {
			return written, &ErrWrite{UUID: uuid, Err: err}
		}
		written = append(written, uuid+"_impbmpsubmittedland")
	}
	if len(tables.Animal) > 0 {
		rows := animalRows(tables.Animal, w.Cat)
		if err := w.writeParquetAndJSON(uuid+"_impbmpsubmittedanimal", rows, animalJSONKeys(tables.Animal)); err != nil {
			return written, &ErrWrite{UUID: uuid, Err: err}
		}
		written = append(written, uuid+"_impbmpsubmittedanimal")
	}
	if len(tables.Manure) > 0 {
		rows := manureRows(tables.Manure, w.Cat)
		if err := w.writeParquetAndJSON(uuid+"_impbmpsubmittedmanuretransport", rows, manureJSONKeys(tables.Manure)); err != nil {
			return written, &ErrWrite{UUID: uuid, Err: err}
		}
		written = append(written, uuid+"_impbmpsubmittedmanuretransport")
	}

	costs := Costs{
		EfficiencyCost: cost.EfficiencyCost,
		LandCost:       cost.LandCost,
		AnimalCost:     cost.AnimalCost,
		ManureCost:     cost.ManureCost,
		Cost:           cost.Total(),
	}
	f, err := os.Create(filepath.Join(w.Dir, uuid+"_costs.json"))
	if err != nil {
		return written, &ErrWrite{UUID: uuid, Err: err}
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(costs); err != nil {
		return written, &ErrWrite{UUID: uuid, Err: err}
	}
	return written, nil
}

// WriteLandJSON writes only the flat JSON shadow for a land table,
// even when it is empty. The ε-Constraint Driver uses this for the
// NLP solver's own land-row output before merging it with a parent's
// land JSON (spec.md §4.6 step 3), which requires the solver's shadow
// file to exist regardless of row count.
func (w *Writer) WriteLandJSON(uuid string, land []model.LandRow) error {
	return writeJSONMap(filepath.Join(w.Dir, uuid+"_impbmpsubmittedland.json"), landJSONKeys(land))
}

func (w *Writer) writeParquetAndJSON(base string, rows interface{}, jsonShadow map[string]float64) error {
	if err := writeParquetFile(filepath.Join(w.Dir, base+".parquet"), rows); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(w.Dir, base+".json"))
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(jsonShadow)
}

func writeParquetFile(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	switch r := rows.(type) {
	case []LandRow:
		return parquet.Write(f, r)
	case []AnimalRow:
		return parquet.Write(f, r)
	case []ManureTransportRow:
		return parquet.Write(f, r)
	default:
		return fmt.Errorf("scenario: writeParquetFile: unsupported row type %T", rows)
	}
}

func landRows(land []model.LandRow, cat *catalog.Catalog) []LandRow {
	out := make([]LandRow, 0, len(land))
	for i, r := range land {
		state := int32(0)
		geo := int32(0)
		if cat != nil {
			g := cat.ParcelGeo[model.ParcelKey{LRSeg: r.LRSeg, Agency: r.Agency, LoadSource: r.LoadSource}]
			state = int32(g.State)
			geo = int32(g.Geography)
		}
		out = append(out, LandRow{
			BmpSubmittedId: int32(i),
			AgencyId:       int32(r.Agency),
			StateId:        state,
			BmpId:          int32(r.BMP),
			GeographyId:    geo,
			Amount:         r.Amount,
			IsValid:        true,
			RowIndex:       int32(i),
		})
	}
	return out
}

func animalRows(animal []model.AnimalRow, cat *catalog.Catalog) []AnimalRow {
	out := make([]AnimalRow, 0, len(animal))
	for i, r := range animal {
		state := int32(0)
		if cat != nil {
			state = int32(cat.CountyState[r.County])
		}
		out = append(out, AnimalRow{
			BmpSubmittedId: int32(i),
			StateId:        state,
			BmpId:          int32(r.BMP),
			Amount:         r.Amount,
			IsValid:        true,
			RowIndex:       int32(i),
		})
	}
	return out
}

func manureRows(manure []model.ManureRow, cat *catalog.Catalog) []ManureTransportRow {
	out := make([]ManureTransportRow, 0, len(manure))
	for i, r := range manure {
		stateFrom := int32(0)
		if cat != nil {
			stateFrom = int32(cat.CountyState[r.CountyFrom])
		}
		out = append(out, ManureTransportRow{
			BmpSubmittedId:    int32(i),
			StateId:           stateFrom,
			BmpId:             int32(r.BMP),
			Amount:            r.AmountTons,
			IsValid:           true,
			RowIndex:          int32(i),
			HasStateReference: true,
			CountyIdFrom:      int32(r.CountyFrom),
			CountyIdTo:        int32(r.CountyTo),
		})
	}
	return out
}

func landJSONKeys(land []model.LandRow) map[string]float64 {
	out := make(map[string]float64, len(land))
	for _, r := range land {
		key := fmt.Sprintf("%d_%d_%d_%d", r.LRSeg, r.Agency, r.LoadSource, r.BMP)
		out[key] += r.Amount
	}
	return out
}

func animalJSONKeys(animal []model.AnimalRow) map[string]float64 {
	out := make(map[string]float64, len(animal))
	for _, r := range animal {
		key := fmt.Sprintf("%d_%d_%d_%d", r.County, r.LoadSource, r.AnimalID, r.BMP)
		out[key] += r.Amount
	}
	return out
}

func manureJSONKeys(manure []model.ManureRow) map[string]float64 {
	out := make(map[string]float64, len(manure))
	for _, r := range manure {
		key := fmt.Sprintf("%d_%d_%d_%d_%d", r.CountyFrom, r.CountyTo, r.LoadSource, r.AnimalID, r.BMP)
		out[key] += r.AmountTons
	}
	return out
}
