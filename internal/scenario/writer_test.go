package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/msucast/bmpopt/internal/model"
	"github.com/parquet-go/parquet-go"
)

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	tables := model.Tables{
		Land: []model.LandRow{
			{LRSeg: 1, Agency: 1, LoadSource: 7, BMP: 7, Amount: 42.5},
			{LRSeg: 1, Agency: 1, LoadSource: 7, BMP: 9, Amount: 13.0},
		},
	}
	cost := model.CostBreakdown{LandCost: 100}

	written, err := w.Write("abc-123", tables, cost)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected 1 file written (land only), got %d: %v", len(written), written)
	}

	path := filepath.Join(dir, "abc-123_impbmpsubmittedland.parquet")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening parquet file: %v", err)
	}
	defer f.Close()
	st, _ := f.Stat()
	rows, err := parquet.Read[LandRow](f, st.Size())
	if err != nil {
		t.Fatalf("reading parquet file: %v", err)
	}
	if len(rows) != len(tables.Land) {
		t.Fatalf("round-tripped %d rows, want %d", len(rows), len(tables.Land))
	}

	gotAmounts := map[int32]float64{}
	for _, r := range rows {
		gotAmounts[r.BmpId] = r.Amount
	}
	if gotAmounts[7] != 42.5 || gotAmounts[9] != 13.0 {
		t.Errorf("amounts by bmp id = %v, want {7:42.5, 9:13.0}", gotAmounts)
	}

	if _, err := os.Stat(filepath.Join(dir, "abc-123_impbmpsubmittedanimal.parquet")); !os.IsNotExist(err) {
		t.Errorf("expected no animal file to be written for an empty animal table")
	}
	if _, err := os.Stat(filepath.Join(dir, "abc-123_costs.json")); err != nil {
		t.Errorf("expected costs.json to always be written: %v", err)
	}
}

func TestMergeLandJSONAndCopyVerbatim(t *testing.T) {
	dir := t.TempDir()

	if err := writeJSONMap(filepath.Join(dir, "parent_impbmpsubmittedland.json"), map[string]float64{"1_1_7_7": 10}); err != nil {
		t.Fatal(err)
	}
	if err := writeJSONMap(filepath.Join(dir, "solver_impbmpsubmittedland.json"), map[string]float64{"1_1_7_9": 5}); err != nil {
		t.Fatal(err)
	}

	merged, err := MergeLandJSON(dir, "parent", "solver", "child")
	if err != nil {
		t.Fatalf("MergeLandJSON: %v", err)
	}
	if merged["1_1_7_7"] != 10 || merged["1_1_7_9"] != 5 {
		t.Errorf("merged = %v", merged)
	}

	// CopyVerbatim requires both .parquet and .json to exist.
	if err := os.WriteFile(filepath.Join(dir, "parent_impbmpsubmittedanimal.parquet"), []byte("binary-data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "parent_impbmpsubmittedanimal.json"), []byte(`{"1_1_1_1":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyVerbatim(dir, "parent", "child", "_impbmpsubmittedanimal"); err != nil {
		t.Fatalf("CopyVerbatim: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "child_impbmpsubmittedanimal.parquet"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "binary-data" {
		t.Errorf("copied file content = %q, want %q", got, "binary-data")
	}
}

func TestMergeCosts(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}
	if _, err := w.Write("parent", model.Tables{Land: []model.LandRow{{LRSeg: 1, Agency: 1, LoadSource: 7, BMP: 7, Amount: 5}}},
		model.CostBreakdown{EfficiencyCost: 1, LandCost: 2, AnimalCost: 3, ManureCost: 4}); err != nil {
		t.Fatal(err)
	}

	c, err := MergeCosts(dir, "parent", "child", 99)
	if err != nil {
		t.Fatalf("MergeCosts: %v", err)
	}
	if c.EfficiencyCost != 99 {
		t.Errorf("ef_cost = %v, want 99", c.EfficiencyCost)
	}
	if c.LandCost != 2 || c.AnimalCost != 3 || c.ManureCost != 4 {
		t.Errorf("other cost components changed: %+v", c)
	}
	if c.Cost != 99+2+3+4 {
		t.Errorf("cost = %v, want %v", c.Cost, 99+2+3+4)
	}
}
