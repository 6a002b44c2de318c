package epsilon

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/msucast/bmpopt/internal/model"
)

// ParentSet is the three PSO archive members the ε-Constraint Driver
// sweeps from: minimum-, median-, and maximum-cost (spec.md §4.6,
// "The three parent selections used by the driver").
type ParentSet struct {
	Min, Median, Max model.ArchiveEntry
}

// SelectParents picks the min/median/max-cost members of entries by
// their first objective (total_cost). The median member is the entry
// whose cost is closest to the 0.5 quantile of the cost distribution,
// computed with gonum/stat.Quantile rather than a plain middle-index
// pick, so ties and even-length archives are handled consistently.
func SelectParents(entries []model.ArchiveEntry) ParentSet {
	sorted := append([]model.ArchiveEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Objectives[0] < sorted[j].Objectives[0] })

	costs := make([]float64, len(sorted))
	for i, e := range sorted {
		costs[i] = e.Objectives[0]
	}
	medianCost := stat.Quantile(0.5, stat.Empirical, append([]float64(nil), costs...), nil)

	medianIdx := 0
	bestDist := -1.0
	for i, c := range costs {
		d := c - medianCost
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			bestDist = d
			medianIdx = i
		}
	}

	return ParentSet{
		Min:    sorted[0],
		Median: sorted[medianIdx],
		Max:    sorted[len(sorted)-1],
	}
}
