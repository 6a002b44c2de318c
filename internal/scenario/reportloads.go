package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// ReadReportLoads sums every row of "<uuid>_reportloads.parquet" into
// the nine EoS/EoR/EoT × N/P/S totals the aggregator needs (spec.md
// §4.7 "summing columns 7..15 across all rows").
func ReadReportLoads(dir, uuid string) (ReportLoadTotals, error) {
	path := filepath.Join(dir, uuid+"_reportloads.parquet")
	f, err := os.Open(path)
	if err != nil {
		return ReportLoadTotals{}, fmt.Errorf("scenario: opening %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return ReportLoadTotals{}, fmt.Errorf("scenario: stat %s: %w", path, err)
	}

	rows, err := parquet.Read[ReportLoadRow](f, st.Size())
	if err != nil {
		return ReportLoadTotals{}, fmt.Errorf("scenario: reading %s: %w", path, err)
	}

	var t ReportLoadTotals
	for _, r := range rows {
		t.EoSN += r.EoSN
		t.EoSP += r.EoSP
		t.EoSS += r.EoSS
		t.EoRN += r.EoRN
		t.EoRP += r.EoRP
		t.EoRS += r.EoRS
		t.EoTN += r.EoTN
		t.EoTP += r.EoTP
		t.EoTS += r.EoTS
	}
	return t, nil
}
