// Package scenario serializes a candidate's decoded BMP-assignment
// tables to the canonical columnar (Parquet) and JSON-shadow files
// named in spec.md §4.3/§6, keyed by the candidate's UUID.
package scenario

// LandRow is the fixed, non-null Parquet schema for
// "<uuid>_impbmpsubmittedland.parquet" (spec.md §6).
type LandRow struct {
	BmpSubmittedId     int32   `parquet:"BmpSubmittedId"`
	AgencyId           int32   `parquet:"AgencyId"`
	StateUniqueIdentifier string `parquet:"StateUniqueIdentifier"`
	StateId            int32   `parquet:"StateId"`
	BmpId              int32   `parquet:"BmpId"`
	GeographyId        int32   `parquet:"GeographyId"`
	LoadSourceGroupId  int32   `parquet:"LoadSourceGroupId"`
	UnitId             int32   `parquet:"UnitId"`
	Amount             float64 `parquet:"Amount"`
	IsValid            bool    `parquet:"IsValid"`
	ErrorMessage       string  `parquet:"ErrorMessage"`
	RowIndex           int32   `parquet:"RowIndex"`
}

// AnimalRow is the fixed Parquet schema for
// "<uuid>_impbmpsubmittedanimal.parquet" (spec.md §6): the land schema
// plus AnimalGroupId, NReductionFraction, PReductionFraction.
type AnimalRow struct {
	BmpSubmittedId        int32   `parquet:"BmpSubmittedId"`
	AgencyId              int32   `parquet:"AgencyId"`
	StateUniqueIdentifier string  `parquet:"StateUniqueIdentifier"`
	StateId               int32   `parquet:"StateId"`
	BmpId                 int32   `parquet:"BmpId"`
	GeographyId           int32   `parquet:"GeographyId"`
	LoadSourceGroupId     int32   `parquet:"LoadSourceGroupId"`
	UnitId                int32   `parquet:"UnitId"`
	Amount                float64 `parquet:"Amount"`
	IsValid               bool    `parquet:"IsValid"`
	ErrorMessage          string  `parquet:"ErrorMessage"`
	RowIndex              int32   `parquet:"RowIndex"`
	AnimalGroupId         int32   `parquet:"AnimalGroupId"`
	NReductionFraction    float64 `parquet:"NReductionFraction"`
	PReductionFraction    float64 `parquet:"PReductionFraction"`
}

// ManureTransportRow is the fixed Parquet schema for
// "<uuid>_impbmpsubmittedmanuretransport.parquet" (spec.md §6).
type ManureTransportRow struct {
	BmpSubmittedId        int32   `parquet:"BmpSubmittedId"`
	AgencyId              int32   `parquet:"AgencyId"`
	StateUniqueIdentifier string  `parquet:"StateUniqueIdentifier"`
	StateId               int32   `parquet:"StateId"`
	BmpId                 int32   `parquet:"BmpId"`
	GeographyId           int32   `parquet:"GeographyId"`
	LoadSourceGroupId     int32   `parquet:"LoadSourceGroupId"`
	UnitId                int32   `parquet:"UnitId"`
	Amount                float64 `parquet:"Amount"`
	IsValid               bool    `parquet:"IsValid"`
	ErrorMessage          string  `parquet:"ErrorMessage"`
	RowIndex              int32   `parquet:"RowIndex"`
	HasStateReference     bool    `parquet:"HasStateReference"`
	CountyIdFrom          int32   `parquet:"CountyIdFrom"`
	CountyIdTo            int32   `parquet:"CountyIdTo"`
	FipsFrom              string  `parquet:"FipsFrom"`
	FipsTo                string  `parquet:"FipsTo"`
}

// Costs is the fixed shape of "<uuid>_costs.json" (spec.md §6).
type Costs struct {
	EfficiencyCost float64 `json:"ef_cost"`
	LandCost       float64 `json:"lc_cost"`
	AnimalCost     float64 `json:"animal_cost"`
	ManureCost     float64 `json:"manure_cost"`
	Cost           float64 `json:"cost"`
}

// ReportLoadRow is the simulator's "<uuid>_reportloads.parquet" schema
// (spec.md §4.7): six identifying columns followed by the nine
// EoS/EoR/EoT × N/P/S pollutant-load columns that the aggregator sums
// across all rows.
type ReportLoadRow struct {
	LRSeg      int32 `parquet:"LrsegId"`
	Agency     int32 `parquet:"AgencyId"`
	LoadSource int32 `parquet:"LoadSourceId"`
	BMP        int32 `parquet:"BmpId"`
	SourceID   int32 `parquet:"SourceId"`
	UnitID     int32 `parquet:"UnitId"`

	EoSN float64 `parquet:"EosN"`
	EoSP float64 `parquet:"EosP"`
	EoSS float64 `parquet:"EosS"`
	EoRN float64 `parquet:"EorN"`
	EoRP float64 `parquet:"EorP"`
	EoRS float64 `parquet:"EorS"`
	EoTN float64 `parquet:"EotN"`
	EoTP float64 `parquet:"EotP"`
	EoTS float64 `parquet:"EotS"`
}

// ReportLoadTotals is the nine pollutant-load sums a
// "<uuid>_reportloads.parquet" file reduces to.
type ReportLoadTotals struct {
	EoSN, EoSP, EoSS float64
	EoRN, EoRP, EoRS float64
	EoTN, EoTP, EoTS float64
}

// Column returns the totals value named by one of the nine
// EoS-N/EoS-P/.../EoT-S objective-column names used in aggregator
// configuration (spec.md §4.7 "default: cost, EoS-N").
func (t ReportLoadTotals) Column(name string) (float64, bool) {
	switch name {
	case "EoS-N":
		return t.EoSN, true
	case "EoS-P":
		return t.EoSP, true
	case "EoS-S":
		return t.EoSS, true
	case "EoR-N":
		return t.EoRN, true
	case "EoR-P":
		return t.EoRP, true
	case "EoR-S":
		return t.EoRS, true
	case "EoT-N":
		return t.EoTN, true
	case "EoT-P":
		return t.EoTP, true
	case "EoT-S":
		return t.EoTS, true
	}
	return 0, false
}
