package pso

import (
	"sort"
	"testing"

	"github.com/msucast/bmpopt/internal/model"
)

func objSet(a *Archive) [][]float64 {
	out := make([][]float64, 0, a.Len())
	for _, e := range a.Entries() {
		out = append(out, e.Objectives)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func offer(a *Archive, objs ...float64) {
	a.Offer(model.Candidate{UUID: "x", Objectives: append([]float64(nil), objs...)})
}

// TestArchiveS3 reproduces the insertion sequence: (10,5), (8,8),
// (5,10), (7,7). (7,7) dominates the (8,8) already in the archive, so
// the final set is {(10,5), (7,7), (5,10)}.
func TestArchiveS3(t *testing.T) {
	a := NewArchive()
	offer(a, 10, 5)
	offer(a, 8, 8)
	offer(a, 5, 10)
	offer(a, 7, 7)

	got := objSet(a)
	want := [][]float64{{5, 10}, {7, 7}, {10, 5}}
	if len(got) != len(want) {
		t.Fatalf("archive = %v, want %v", got, want)
	}
	for i := range want {
		if got[i][0] != want[i][0] || got[i][1] != want[i][1] {
			t.Errorf("archive[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestArchiveRejectsDuplicateObjectives(t *testing.T) {
	a := NewArchive()
	offer(a, 3, 3)
	offer(a, 3, 3)
	if a.Len() != 1 {
		t.Fatalf("archive len = %d, want 1 (exact duplicate must be treated as dominated)", a.Len())
	}
}

// TestArchiveMutuallyNonDominated asserts the archive invariant: no
// two surviving entries dominate each other, after a mixed sequence of
// inserts.
func TestArchiveMutuallyNonDominated(t *testing.T) {
	a := NewArchive()
	seq := [][2]float64{{10, 5}, {8, 8}, {5, 10}, {7, 7}, {1, 20}, {20, 1}, {6, 9}}
	for _, o := range seq {
		offer(a, o[0], o[1])
	}
	entries := a.Entries()
	for i := range entries {
		for j := range entries {
			if i == j {
				continue
			}
			if model.Dominates(entries[i].Objectives, entries[j].Objectives) {
				t.Errorf("entry %v dominates surviving entry %v", entries[i].Objectives, entries[j].Objectives)
			}
		}
	}
}
