// Package model holds the domain types shared across the encoding,
// scenario, dispatch, PSO, epsilon-constraint and aggregation layers.
package model

import "fmt"

// ParcelKey identifies a land parcel by land-river-segment, agency and
// load source.
type ParcelKey struct {
	LRSeg      int
	Agency     int
	LoadSource int
}

// String renders the canonical underscore-joined composite key used
// for JSON shadow keys and simulator interchange.
func (k ParcelKey) String() string {
	return fmt.Sprintf("%d_%d_%d", k.LRSeg, k.Agency, k.LoadSource)
}

// AnimalKey identifies an animal inventory row.
type AnimalKey struct {
	BaseCondition int
	County        int
	LoadSource    int
	AnimalID      int
}

func (k AnimalKey) String() string {
	return fmt.Sprintf("%d_%d_%d_%d", k.BaseCondition, k.County, k.LoadSource, k.AnimalID)
}

// ManureKey identifies a manure source row, before transport.
type ManureKey struct {
	CountyFrom int
	LoadSource int
	AnimalID   int
}

func (k ManureKey) String() string {
	return fmt.Sprintf("%d_%d_%d", k.CountyFrom, k.LoadSource, k.AnimalID)
}

// LandConversionBMP is a directed conversion from one load source to
// another, labeled by a BMP id.
type LandConversionBMP struct {
	ToLoadSource int
	BMPID        int
}

// EfficiencyGroup is a set of BMPs competing for the same share within
// a parcel key.
type EfficiencyGroup struct {
	GroupID int
	BMPs    []int
}

// StateBMP is the (state, bmp) composite key used for unit-cost
// lookups.
type StateBMP struct {
	State int
	BMP   int
}
