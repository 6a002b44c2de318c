package model

// SentinelObjective marks a candidate whose scenario files could not
// be produced or whose dispatch never completed. It is deliberately
// large enough that it always loses a dominance comparison.
const SentinelObjective = 1e13

// LandRow is one emitted land-conversion assignment.
type LandRow struct {
	LRSeg      int
	Agency     int
	LoadSource int
	BMP        int
	Amount     float64
}

// AnimalRow is one emitted animal-BMP assignment.
type AnimalRow struct {
	County     int
	LoadSource int
	AnimalID   int
	BMP        int
	Amount     float64
}

// ManureRow is one emitted manure-transport assignment.
type ManureRow struct {
	CountyFrom int
	CountyTo   int
	LoadSource int
	AnimalID   int
	BMP        int
	AmountTons float64
}

// EfficiencyShare is one normalized efficiency-BMP share.
type EfficiencyShare struct {
	Key     ParcelKey
	GroupID int
	BMP     int
	Share   float64
}

// Tables is the decoded output of the encoding layer for a single
// candidate: the four per-category BMP-assignment tables plus the
// land-conversion acreage bookkeeping.
type Tables struct {
	Efficiency []EfficiencyShare
	Land       []LandRow
	Animal     []AnimalRow
	Manure     []ManureRow

	// AmountMinus[parcel] is the total acreage removed from the
	// source parcel by land-conversion BMPs.
	AmountMinus map[ParcelKey]float64
	// AmountPlus[parcel] is the total acreage added to each
	// destination parcel by land-conversion BMPs.
	AmountPlus map[ParcelKey]float64
}

// Empty reports whether all four tables have no rows.
func (t Tables) Empty() bool {
	return len(t.Efficiency) == 0 && len(t.Land) == 0 && len(t.Animal) == 0 && len(t.Manure) == 0
}

// CostBreakdown is the local cost accounting computed by the encoding
// layer, independent of the simulator's returned load.
type CostBreakdown struct {
	EfficiencyCost float64 // always 0: efficiency shares feed the pollutant model only
	LandCost       float64
	AnimalCost     float64
	ManureCost     float64
}

// Total returns the sum of the four cost components.
func (c CostBreakdown) Total() float64 {
	return c.EfficiencyCost + c.LandCost + c.AnimalCost + c.ManureCost
}

// Candidate is a single decision vector plus its decoded tables, cost
// decomposition, and (once evaluated) objective values.
type Candidate struct {
	UUID       string
	X          []float64
	Tables     Tables
	Cost       CostBreakdown
	Objectives []float64 // length nobjs; Objectives[0] is always total cost
	Failed     bool
}

// Clone returns a deep-enough copy of c suitable for archiving: the
// decision vector and objectives are copied, the tables and cost
// breakdown are shared by value (they are not subsequently mutated
// once a candidate has been evaluated).
func (c Candidate) Clone() Candidate {
	out := c
	out.X = append([]float64(nil), c.X...)
	out.Objectives = append([]float64(nil), c.Objectives...)
	return out
}
