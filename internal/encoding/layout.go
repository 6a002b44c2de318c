// Package encoding maps an unconstrained real vector x ∈ [0,1]^N to
// the four concrete BMP-assignment tables, per spec.md §3 invariant 1
// and §4.2.
package encoding

import (
	"sort"

	"github.com/msucast/bmpopt/internal/catalog"
	"github.com/msucast/bmpopt/internal/model"
)

// group is one slack-plus-BMPs share group within a block.
type group struct {
	slackIdx int
	bmpIdx   []int // one x index per candidate BMP, same order as bmps
	bmps     []int
}

// efficiencyGroupRef additionally carries the owning parcel key and
// group id, since efficiency groups are the only ones with more than
// one group per key.
type efficiencyGroupRef struct {
	group
	key     model.ParcelKey
	groupID int
}

// landGroupRef carries the parcel key for a land-conversion block
// entry; the "BMPs" here are the available destination options.
type landGroupRef struct {
	group
	key  model.ParcelKey
	dest []int // destination load source per bmpIdx position
}

type animalGroupRef struct {
	group
	key model.AnimalKey
}

type manureGroupRef struct {
	group
	key model.ManureKey
}

// Layout is the fixed, deterministic partition of the decision vector
// into the four contiguous blocks named in spec.md §3 invariant 1:
// efficiency, land-conversion, animal, manure, in that fixed order.
type Layout struct {
	EfficiencyEnabled bool
	LandEnabled       bool
	AnimalEnabled     bool
	ManureEnabled     bool

	efficiency []efficiencyGroupRef
	land       []landGroupRef
	animal     []animalGroupRef
	manure     []manureGroupRef

	efSize      int
	lcSize      int
	animalSize  int
	manureSize  int
}

// EfficiencyGroupInfo exposes one efficiency group's layout to callers
// outside this package (the ε-Constraint Driver's NLP needs to walk
// groups directly rather than through the table-producing Normalize*
// methods).
type EfficiencyGroupInfo struct {
	Key      model.ParcelKey
	GroupID  int
	SlackIdx int
	BMPIdx   []int
	BMPs     []int
}

// EfficiencyGroups returns the layout's efficiency groups in the fixed
// order they occupy the decision vector.
func (l *Layout) EfficiencyGroups() []EfficiencyGroupInfo {
	out := make([]EfficiencyGroupInfo, len(l.efficiency))
	for i, g := range l.efficiency {
		out[i] = EfficiencyGroupInfo{Key: g.key, GroupID: g.groupID, SlackIdx: g.slackIdx, BMPIdx: g.bmpIdx, BMPs: g.bmps}
	}
	return out
}

// Shares computes the normalized per-BMP shares for one group, given
// its slack index and BMP indices (exported for the ε-Constraint
// Driver's objective/gradient evaluation).
func Shares(x []float64, slackIdx int, bmpIdx []int) []float64 {
	return shares(x, group{slackIdx: slackIdx, bmpIdx: bmpIdx})
}

// N is the total length of the decision vector this layout requires.
func (l *Layout) N() int {
	return l.efSize + l.lcSize + l.animalSize + l.manureSize
}

// EfficiencySize, LandSize, AnimalSize, ManureSize expose the block
// sizes, e.g. for the S1 test scenario ("nvars == lc_size" when only
// land-conversion is enabled).
func (l *Layout) EfficiencySize() int { return l.efSize }
func (l *Layout) LandSize() int       { return l.lcSize }
func (l *Layout) AnimalSize() int     { return l.animalSize }
func (l *Layout) ManureSize() int     { return l.manureSize }

// NewLayout builds the fixed layout deterministically from the
// Reference Catalog, per spec.md §3 invariant 1: one slack variable
// followed by one variable per candidate BMP, for every group within
// every key, in stable (sorted) key order so the layout is
// reproducible across runs against the same catalog.
func NewLayout(cat *catalog.Catalog, efficiency, land, animal, manure bool) *Layout {
	l := &Layout{EfficiencyEnabled: efficiency, LandEnabled: land, AnimalEnabled: animal, ManureEnabled: manure}
	idx := 0

	if efficiency {
		keys := sortedParcelKeys(cat.ValidEfficiencyKeys)
		for _, key := range keys {
			groups := cat.ValidEfficiencyKeys[key]
			sort.Slice(groups, func(i, j int) bool { return groups[i].GroupID < groups[j].GroupID })
			for _, g := range groups {
				ref := efficiencyGroupRef{key: key, groupID: g.GroupID}
				ref.slackIdx = idx
				idx++
				for _, bmp := range sortedCopy(g.BMPs) {
					ref.bmps = append(ref.bmps, bmp)
					ref.bmpIdx = append(ref.bmpIdx, idx)
					idx++
				}
				l.efficiency = append(l.efficiency, ref)
			}
		}
		l.efSize = idx
	}

	if land {
		start := idx
		keys := sortedParcelKeysSlice(cat.ValidLandConversionKeys)
		for _, key := range keys {
			opts := cat.LandConversionTo[key.LoadSource]
			ref := landGroupRef{key: key}
			ref.slackIdx = idx
			idx++
			for _, o := range opts {
				ref.bmps = append(ref.bmps, o.BMPID)
				ref.dest = append(ref.dest, o.ToLoadSource)
				ref.bmpIdx = append(ref.bmpIdx, idx)
				idx++
			}
			l.land = append(l.land, ref)
		}
		l.lcSize = idx - start
	}

	if animal {
		start := idx
		keys := sortedAnimalKeys(cat.AnimalComplete)
		for _, key := range keys {
			bmps := sortedCopy(cat.AnimalComplete[key])
			ref := animalGroupRef{key: key}
			ref.slackIdx = idx
			idx++
			for _, bmp := range bmps {
				ref.bmps = append(ref.bmps, bmp)
				ref.bmpIdx = append(ref.bmpIdx, idx)
				idx++
			}
			l.animal = append(l.animal, ref)
		}
		l.animalSize = idx - start
	}

	if manure {
		start := idx
		keys := sortedManureKeys(cat.ManureInventory)
		for _, key := range keys {
			row := cat.ManureInventory[key]
			ref := manureGroupRef{key: key}
			ref.slackIdx = idx
			idx++
			for _, to := range row.Neighbors {
				ref.bmps = append(ref.bmps, to) // the "BMP" dimension here is the destination county
				ref.bmpIdx = append(ref.bmpIdx, idx)
				idx++
			}
			l.manure = append(l.manure, ref)
		}
		l.manureSize = idx - start
	}

	return l
}

func sortedParcelKeys(m map[model.ParcelKey][]model.EfficiencyGroup) []model.ParcelKey {
	out := make([]model.ParcelKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortParcelKeys(out)
	return out
}

func sortedParcelKeysSlice(s []model.ParcelKey) []model.ParcelKey {
	out := append([]model.ParcelKey(nil), s...)
	sortParcelKeys(out)
	return out
}

func sortParcelKeys(s []model.ParcelKey) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].LRSeg != s[j].LRSeg {
			return s[i].LRSeg < s[j].LRSeg
		}
		if s[i].Agency != s[j].Agency {
			return s[i].Agency < s[j].Agency
		}
		return s[i].LoadSource < s[j].LoadSource
	})
}

func sortedAnimalKeys(m map[model.AnimalKey][]int) []model.AnimalKey {
	out := make([]model.AnimalKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.BaseCondition != b.BaseCondition {
			return a.BaseCondition < b.BaseCondition
		}
		if a.County != b.County {
			return a.County < b.County
		}
		if a.LoadSource != b.LoadSource {
			return a.LoadSource < b.LoadSource
		}
		return a.AnimalID < b.AnimalID
	})
	return out
}

func sortedManureKeys(m map[model.ManureKey]catalog.ManureRow) []model.ManureKey {
	out := make([]model.ManureKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CountyFrom != b.CountyFrom {
			return a.CountyFrom < b.CountyFrom
		}
		if a.LoadSource != b.LoadSource {
			return a.LoadSource < b.LoadSource
		}
		return a.AnimalID < b.AnimalID
	})
	return out
}

func sortedCopy(s []int) []int {
	out := append([]int(nil), s...)
	sort.Ints(out)
	return out
}
