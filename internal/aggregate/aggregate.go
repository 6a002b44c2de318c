// Package aggregate implements the Result Aggregator (spec.md §4.7):
// it reads every candidate's cost and reported-load files, filters to
// the Pareto-non-dominated subset, and writes the final front.
package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/msucast/bmpopt/internal/model"
	"github.com/msucast/bmpopt/internal/scenario"
)

// DefaultColumns is the default pair of objective columns named in
// spec.md §4.7 step 2.
var DefaultColumns = []string{"cost", "EoS-N"}

// Candidate is one <index>_<uuid> entry the aggregator reads from the
// run directory.
type Candidate struct {
	Index int
	UUID  string
}

// Aggregator reads every candidate's cost and reported-load files from
// Dir and writes the surviving Pareto front to Dir/front.
type Aggregator struct {
	Dir     string
	Columns []string // objective column names, e.g. {"cost", "EoS-N"}
	Log     logrus.FieldLogger
}

// NewAggregator builds an Aggregator with the given run directory and
// objective columns, defaulting Columns to DefaultColumns when empty.
func NewAggregator(dir string, columns []string, log logrus.FieldLogger) *Aggregator {
	if len(columns) == 0 {
		columns = append([]string(nil), DefaultColumns...)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Aggregator{Dir: dir, Columns: columns, Log: log}
}

// entry is one candidate's resolved objective vector, kept alongside
// its original index so the final CSV can be sorted back into
// candidate order (spec.md §4.7 step 4, "sorted by index").
type entry struct {
	Candidate
	Objectives []float64
}

// Run executes the full aggregation pipeline: load every candidate's
// cost/report-load files, filter to the non-dominated subset, and
// write the CSV plus renamed file copies into Dir/front.
func (a *Aggregator) Run(candidates []Candidate) error {
	entries := make([]entry, 0, len(candidates))
	for _, c := range candidates {
		objs, err := a.objectives(c.UUID)
		if err != nil {
			a.Log.WithFields(logrus.Fields{"uuid": c.UUID, "err": err}).Warn("aggregate: skipping candidate, read failed")
			continue
		}
		entries = append(entries, entry{Candidate: c, Objectives: objs})
	}

	front := nonDominated(entries)
	sort.Slice(front, func(i, j int) bool { return front[i].Index < front[j].Index })

	frontDir := filepath.Join(a.Dir, "front")
	if err := os.MkdirAll(frontDir, 0o755); err != nil {
		return fmt.Errorf("aggregate: creating front dir: %w", err)
	}

	if err := a.writeCSV(frontDir, front); err != nil {
		return err
	}
	if err := a.copyFront(frontDir, front); err != nil {
		return err
	}

	a.Log.WithFields(logrus.Fields{"candidates": len(candidates), "front_size": len(front)}).Info("aggregate: run complete")
	return nil
}

// objectives computes one candidate's objective vector for the
// configured Columns: "cost" is the sum of the four cost components
// (spec.md §4.7 step 2); any other name is looked up in the summed
// reportloads totals.
func (a *Aggregator) objectives(uuid string) ([]float64, error) {
	costs, err := scenario.ReadCosts(a.Dir, uuid)
	if err != nil {
		return nil, err
	}
	var totals scenario.ReportLoadTotals
	needTotals := false
	for _, col := range a.Columns {
		if col != "cost" {
			needTotals = true
		}
	}
	if needTotals {
		totals, err = scenario.ReadReportLoads(a.Dir, uuid)
		if err != nil {
			return nil, err
		}
	}

	out := make([]float64, len(a.Columns))
	for i, col := range a.Columns {
		if col == "cost" {
			out[i] = costs.Cost
			continue
		}
		v, ok := totals.Column(col)
		if !ok {
			return nil, fmt.Errorf("aggregate: unknown objective column %q", col)
		}
		out[i] = v
	}
	return out, nil
}

// nonDominated filters entries down to the Pareto-non-dominated subset
// using the same dominance rule as internal/pso (spec.md §4.7 step 3).
func nonDominated(entries []entry) []entry {
	var front []entry
	for _, e := range entries {
		dominated := false
		for _, o := range entries {
			if o.UUID == e.UUID {
				continue
			}
			if model.Equal(o.Objectives, e.Objectives) {
				continue
			}
			if model.Dominates(o.Objectives, e.Objectives) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, e)
		}
	}
	return front
}

// writeCSV writes front/pareto_front.txt: one row per surviving
// candidate, columns = original index followed by each objective
// value, sorted by index (spec.md §4.7 step 4).
func (a *Aggregator) writeCSV(frontDir string, front []entry) error {
	path := filepath.Join(frontDir, "pareto_front.txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aggregate: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"index"}, a.Columns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("aggregate: writing CSV header: %w", err)
	}
	for _, e := range front {
		row := make([]string, 0, len(e.Objectives)+1)
		row = append(row, strconv.Itoa(e.Index))
		for _, v := range e.Objectives {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("aggregate: writing CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// copyFront copies every surviving candidate's Parquet/JSON files into
// frontDir, renamed to a contiguous 0..K-1 index (spec.md §6 "Copies
// of the surviving Parquet/JSON files renamed to a contiguous 0..K-1
// index").
func (a *Aggregator) copyFront(frontDir string, front []entry) error {
	suffixes := []string{
		"_impbmpsubmittedland.parquet", "_impbmpsubmittedland.json",
		"_impbmpsubmittedanimal.parquet", "_impbmpsubmittedanimal.json",
		"_impbmpsubmittedmanuretransport.parquet", "_impbmpsubmittedmanuretransport.json",
		"_costs.json", "_reportloads.parquet",
	}
	for newIdx, e := range front {
		for _, suffix := range suffixes {
			src := filepath.Join(a.Dir, e.UUID+suffix)
			if _, err := os.Stat(src); err != nil {
				continue
			}
			dst := filepath.Join(frontDir, strconv.Itoa(newIdx)+suffix)
			if err := copyFile(src, dst); err != nil {
				return fmt.Errorf("aggregate: copying %s: %w", src, err)
			}
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
