package pso

import "github.com/msucast/bmpopt/internal/model"

// Archive is the single external non-dominated archive of spec.md
// §4.5 step 4 — one flat slice, replacing the "multiple concentric
// archives" design the REDESIGN FLAGS call out in spec.md §9.
type Archive struct {
	entries []model.ArchiveEntry
}

// NewArchive returns an empty archive.
func NewArchive() *Archive { return &Archive{} }

// Entries returns the current archive contents. The returned slice
// must not be mutated by the caller.
func (a *Archive) Entries() []model.ArchiveEntry { return a.entries }

// Len reports the number of archive members.
func (a *Archive) Len() int { return len(a.entries) }

// Offer sweeps the archive against a new candidate: entries it
// dominates are dropped, and it is added iff no remaining entry
// dominates it or equals it exactly (spec.md §4.5 step 4, "exact-equal
// objective vectors are treated as dominated").
func (a *Archive) Offer(c model.Candidate) {
	kept := a.entries[:0:0]
	dominated := false
	for _, e := range a.entries {
		if model.Equal(e.Objectives, c.Objectives) {
			dominated = true
			kept = append(kept, e)
			continue
		}
		if model.Dominates(c.Objectives, e.Objectives) {
			continue // e is dropped
		}
		if model.Dominates(e.Objectives, c.Objectives) {
			dominated = true
		}
		kept = append(kept, e)
	}
	a.entries = kept
	if !dominated {
		a.entries = append(a.entries, model.ArchiveEntry{Candidate: c, Objectives: c.Objectives})
	}
}
