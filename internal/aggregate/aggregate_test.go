package aggregate

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/msucast/bmpopt/internal/scenario"
)

func writeCandidate(t *testing.T, dir, uuid string, cost, eosN float64) {
	t.Helper()

	costs := scenario.Costs{EfficiencyCost: cost, Cost: cost}
	cf, err := os.Create(filepath.Join(dir, uuid+"_costs.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer cf.Close()
	if err := json.NewEncoder(cf).Encode(costs); err != nil {
		t.Fatal(err)
	}

	pf, err := os.Create(filepath.Join(dir, uuid+"_reportloads.parquet"))
	if err != nil {
		t.Fatal(err)
	}
	defer pf.Close()
	rows := []scenario.ReportLoadRow{{EoSN: eosN}}
	if err := parquet.Write(pf, rows); err != nil {
		t.Fatal(err)
	}
}

// TestAggregatorS6 reproduces the S6 scenario: three candidates with
// objective tuples (100,50), (80,60), (120,40) are all mutually
// non-dominated, so all three survive to front/ with CSV rows sorted
// by original index.
func TestAggregatorS6(t *testing.T) {
	dir := t.TempDir()
	writeCandidate(t, dir, "u0", 100, 50)
	writeCandidate(t, dir, "u1", 80, 60)
	writeCandidate(t, dir, "u2", 120, 40)

	a := NewAggregator(dir, []string{"cost", "EoS-N"}, nil)
	candidates := []Candidate{{Index: 0, UUID: "u0"}, {Index: 1, UUID: "u1"}, {Index: 2, UUID: "u2"}}
	if err := a.Run(candidates); err != nil {
		t.Fatalf("Run: %v", err)
	}

	frontDir := filepath.Join(dir, "front")
	f, err := os.Open(filepath.Join(frontDir, "pareto_front.txt"))
	if err != nil {
		t.Fatalf("opening pareto_front.txt: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(records) != 4 { // header + 3 rows
		t.Fatalf("expected header + 3 rows, got %d: %v", len(records), records)
	}
	if records[0][0] != "index" || records[0][1] != "cost" || records[0][2] != "EoS-N" {
		t.Errorf("unexpected header: %v", records[0])
	}
	for i, want := range [][2]string{{"0", "100"}, {"1", "80"}, {"2", "120"}} {
		row := records[i+1]
		if row[0] != want[0] {
			t.Errorf("row %d: index = %s, want %s (expected sorted by original index)", i, row[0], want[0])
		}
		if row[1] != want[1] {
			t.Errorf("row %d: cost = %s, want %s", i, row[1], want[1])
		}
	}

	for newIdx := 0; newIdx < 3; newIdx++ {
		if _, err := os.Stat(filepath.Join(frontDir, strconv.Itoa(newIdx)+"_costs.json")); err != nil {
			t.Errorf("candidate %d's costs file missing from front/: %v", newIdx, err)
		}
	}
}

// TestAggregatorFiltersDominated verifies a strictly dominated
// candidate is excluded from the front.
func TestAggregatorFiltersDominated(t *testing.T) {
	dir := t.TempDir()
	writeCandidate(t, dir, "good", 100, 50)
	writeCandidate(t, dir, "dominated", 120, 60) // worse on both objectives

	a := NewAggregator(dir, []string{"cost", "EoS-N"}, nil)
	candidates := []Candidate{{Index: 0, UUID: "good"}, {Index: 1, UUID: "dominated"}}
	if err := a.Run(candidates); err != nil {
		t.Fatalf("Run: %v", err)
	}

	frontDir := filepath.Join(dir, "front")
	f, err := os.Open(filepath.Join(frontDir, "pareto_front.txt"))
	if err != nil {
		t.Fatalf("opening pareto_front.txt: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(records) != 2 { // header + 1 surviving row
		t.Fatalf("expected header + 1 row, got %d: %v", len(records), records)
	}
	if records[1][0] != "0" {
		t.Errorf("surviving row has wrong index: %v", records[1])
	}
}
