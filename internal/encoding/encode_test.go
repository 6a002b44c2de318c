package encoding

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/msucast/bmpopt/internal/catalog"
	"github.com/msucast/bmpopt/internal/model"
)

func landOnlyCatalog() *catalog.Catalog {
	key := model.ParcelKey{LRSeg: 1, Agency: 1, LoadSource: 7}
	return &catalog.Catalog{
		Amount:         map[model.ParcelKey]float64{key: 10000},
		PctByValidLoad: map[int]float64{7: 50},
		LandConversionTo: map[int][]model.LandConversionBMP{
			7: {{ToLoadSource: 8, BMPID: 7}, {ToLoadSource: 9, BMPID: 9}},
		},
		ParcelGeo: map[model.ParcelKey]catalog.ParcelGeo{key: {State: 51}},
		BMPCost: map[model.StateBMP]float64{
			{State: 51, BMP: 7}: 100,
			{State: 51, BMP: 9}: 150,
		},
	}
}

// S1: selected_bmps = [7, 9], only land-conversion enabled.
func TestS1LandConversionOnly(t *testing.T) {
	cat := landOnlyCatalog()
	cat.SelectedBMPs = map[int]bool{7: true, 9: true}
	deriveLandConversion(cat)

	layout := NewLayout(cat, false, true, false, false)
	if layout.N() != layout.LandSize() {
		t.Fatalf("nvars = %d, want lc_size = %d", layout.N(), layout.LandSize())
	}

	rng := rand.New(rand.NewSource(0))
	x := make([]float64, layout.N())
	layout.Initialize(x, rng)

	tables, cost, err := layout.Encode(x, cat)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(tables.Land) == 0 {
		t.Fatalf("expected non-empty land table")
	}
	if cost.LandCost <= 0 {
		t.Errorf("expected strictly positive land cost, got %v", cost.LandCost)
	}
}

// S2: manure share = 1.0 on a single key with dry_lbs=4000 should
// yield 0.6 wet tons.
func TestS2ManureConversion(t *testing.T) {
	key := model.ManureKey{CountyFrom: 43, LoadSource: 17, AnimalID: 1}
	cat := &catalog.Catalog{
		ManureInventory: map[model.ManureKey]catalog.ManureRow{
			key: {DryLbs: 4000, Neighbors: []int{44}},
		},
		CountyState: map[int]int{43: 51},
		BMPCost:     map[model.StateBMP]float64{{State: 51, BMP: ManureTransportBMPID}: 10},
	}
	layout := NewLayout(cat, false, false, false, true)
	if layout.ManureSize() != 2 { // 1 slack + 1 neighbor
		t.Fatalf("manure size = %d, want 2", layout.ManureSize())
	}

	// slack=0, share variable = 1 => share = 1/(0+1) = 1.0
	x := []float64{0, 1}
	rows, cost := layout.NormalizeManure(x, cat, ManureTransportBMPID)
	if len(rows) != 1 {
		t.Fatalf("expected 1 manure row, got %d", len(rows))
	}
	want := 0.6
	if diff := rows[0].AmountTons - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("amount_tons = %v, want %v", rows[0].AmountTons, want)
	}
	wantCost := want * 10
	if diff := cost - wantCost; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("cost = %v, want %v", cost, wantCost)
	}
}

// TestEncodeSentinelsPerCategoryIndependently reproduces spec.md:209's
// "at least one of the four tables would be empty" rule: land and
// animal are enabled but have no catalog data (their tables are always
// empty), while manure is enabled and produces a non-empty row. Encode
// must still return ErrNoAssignments, since the old all-four-empty AND
// check would have let this candidate through to dispatch.
func TestEncodeSentinelsPerCategoryIndependently(t *testing.T) {
	manureKey := model.ManureKey{CountyFrom: 43, LoadSource: 17, AnimalID: 1}
	cat := &catalog.Catalog{
		ManureInventory: map[model.ManureKey]catalog.ManureRow{
			manureKey: {DryLbs: 4000, Neighbors: []int{44}},
		},
		CountyState: map[int]int{43: 51},
		BMPCost:     map[model.StateBMP]float64{{State: 51, BMP: ManureTransportBMPID}: 10},
	}
	layout := NewLayout(cat, false, true, true, true)
	if layout.N() != 2 { // land/animal contribute nothing; manure is 1 slack + 1 neighbor
		t.Fatalf("nvars = %d, want 2", layout.N())
	}

	// slack=0, share variable=1 => manure share = 1.0, a non-empty manure table.
	x := []float64{0, 1}
	tables, _, err := layout.Encode(x, cat)
	if len(tables.Manure) == 0 {
		t.Fatalf("expected non-empty manure table for this fixture")
	}
	if !errors.Is(err, ErrNoAssignments) {
		t.Fatalf("Encode err = %v, want ErrNoAssignments (land and animal tables are empty even though manure is not)", err)
	}
}

func TestShareSumBoundAndThreshold(t *testing.T) {
	cat := landOnlyCatalog()
	cat.SelectedBMPs = map[int]bool{7: true, 9: true}
	deriveLandConversion(cat)
	layout := NewLayout(cat, false, true, false, false)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		x := make([]float64, layout.N())
		layout.Initialize(x, rng)
		for _, g := range layout.land {
			sh := shares(x, g.group)
			sum := 0.0
			for _, s := range sh {
				if s < 0 || s > 1 {
					t.Fatalf("share %v out of [0,1]", s)
				}
				sum += s
			}
			if sum > 1+1e-9 {
				t.Fatalf("share sum %v exceeds 1", sum)
			}
		}
		rows, _, _, _ := layout.NormalizeLandConversion(x, cat)
		for _, r := range rows {
			if r.Amount <= emitThreshold {
				t.Fatalf("emitted row with amount %v <= threshold", r.Amount)
			}
		}
	}
}

func TestPlusMinusBalance(t *testing.T) {
	cat := landOnlyCatalog()
	cat.SelectedBMPs = map[int]bool{7: true, 9: true}
	deriveLandConversion(cat)
	layout := NewLayout(cat, false, true, false, false)

	rng := rand.New(rand.NewSource(7))
	x := make([]float64, layout.N())
	layout.Initialize(x, rng)
	_, minus, plus, _ := layout.NormalizeLandConversion(x, cat)

	var sumMinus, sumPlus float64
	for _, v := range minus {
		sumMinus += v
	}
	for _, v := range plus {
		sumPlus += v
	}
	if diff := sumMinus - sumPlus; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("sum(amount_minus)=%v != sum(amount_plus)=%v", sumMinus, sumPlus)
	}
}
