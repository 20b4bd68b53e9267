// Package record turns raw tabular rows from the aggregation pipeline into
// typed, map-ready job records. Rows without a renderable position are
// dropped at the gate; nothing downstream ever sees a non-finite coordinate.
package record

import (
	"math"
	"strconv"
	"strings"

	"github.com/stapply-ai/jobmap/slug"
)

// Row is one raw row as it comes off the snapshot: column name to cell
// value, where a cell is a string, a float64, or absent.
type Row map[string]any

// JobRecord is one aggregated posting. Immutable after normalization; the
// whole dataset is replaced wholesale on refresh.
type JobRecord struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	ATSID    string `json:"ats_id"`
	ID       string `json:"id"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	SalaryMin      *string `json:"salary_min,omitempty"`
	SalaryMax      *string `json:"salary_max,omitempty"`
	SalaryCurrency string  `json:"salary_currency"`
	SalaryPeriod   string  `json:"salary_period"`
	SalarySummary  *string `json:"salary_summary,omitempty"`

	// CompanySlug/ValueSlug are derived once at normalization time; the pair
	// is the record's persistent public URL.
	CompanySlug string `json:"company_slug"`
	ValueSlug   string `json:"value_slug"`
}

const (
	defaultCurrency = "USD"
	defaultPeriod   = "YEAR"
)

// coerceString renders a cell as a string; absent and nil become "".
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// coerceFloat parses a cell as a coordinate. Native numbers pass through;
// strings are parsed; anything else (absent, empty, junk) is NaN.
func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// coerceOptional returns a salary cell as *string, nil when absent or empty.
func coerceOptional(v any) *string {
	s := coerceString(v)
	if s == "" {
		return nil
	}
	return &s
}

// Normalize coerces raw rows into JobRecords, silently dropping any row
// whose coordinates do not resolve to finite numbers. It never fails:
// malformed rows are only observable as a lower output count.
func Normalize(rows []Row) []JobRecord {
	records := make([]JobRecord, 0, len(rows))
	for _, row := range rows {
		lat := coerceFloat(row["lat"])
		// Prefer the lon column; fall back to lng only when lon is absent or
		// empty. A present but unparseable lon drops the row.
		lngCell := row["lon"]
		if isBlankCell(lngCell) {
			lngCell = row["lng"]
		}
		lng := coerceFloat(lngCell)
		if !isFinite(lat) || !isFinite(lng) {
			continue
		}

		rec := JobRecord{
			URL:           coerceString(row["url"]),
			Title:         coerceString(row["title"]),
			Company:       coerceString(row["company"]),
			Location:      coerceString(row["location"]),
			ATSID:         coerceString(row["ats_id"]),
			ID:            coerceString(row["id"]),
			Lat:           lat,
			Lng:           lng,
			SalaryMin:     coerceOptional(row["salary_min"]),
			SalaryMax:     coerceOptional(row["salary_max"]),
			SalarySummary: coerceOptional(row["salary_summary"]),
		}
		rec.SalaryCurrency = coerceString(row["salary_currency"])
		if rec.SalaryCurrency == "" {
			rec.SalaryCurrency = defaultCurrency
		}
		rec.SalaryPeriod = coerceString(row["salary_period"])
		if rec.SalaryPeriod == "" {
			rec.SalaryPeriod = defaultPeriod
		}
		rec.CompanySlug, rec.ValueSlug = slug.GenerateJobSlug(rec.Title, rec.ID, rec.Company)

		records = append(records, rec)
	}
	return records
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// isBlankCell reports whether a cell is absent, nil, or a whitespace-only
// string. Non-string values are never blank.
func isBlankCell(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
