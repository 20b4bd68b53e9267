package cluster

import (
	"sort"
	"strconv"
)

// GeoJSON types
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// ToGeoJSON converts clusters to a GeoJSON FeatureCollection. Singletons
// carry the record's display fields and slug path; multi-marker clusters
// carry only the count.
func ToGeoJSON(clusters []Cluster) *FeatureCollection {
	features := make([]Feature, len(clusters))
	for i, c := range clusters {
		properties := map[string]interface{}{
			"cluster":     c.Count > 1,
			"cluster_id":  c.ID,
			"point_count": c.Count,
		}

		if c.Count == 1 && c.Members[0].Record != nil {
			rec := c.Members[0].Record
			properties["title"] = rec.Title
			properties["company"] = rec.Company
			properties["location"] = rec.Location
			properties["url"] = rec.URL
			properties["slug"] = rec.CompanySlug + "/" + rec.ValueSlug
		}

		features[i] = Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{c.Lng, c.Lat},
			},
			Properties: properties,
		}
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// Summary describes a cluster result for the metadata endpoint.
type Summary struct {
	TotalJobs        int            `json:"totalJobs"`
	NumClusters      int            `json:"numClusters"`
	NumSingleMarkers int            `json:"numSingleMarkers"`
	Companies        map[string]int `json:"companies"`
	TopCompanies     []CompanyCount `json:"topCompanies"`
	Salary           *SalaryStats   `json:"salary,omitempty"`
}

type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// SalaryStats aggregates the numeric salary bounds of records that carry
// them. Values are in each record's own currency; no conversion is done.
type SalaryStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// Summarize rolls clusters up for the metadata endpoint: totals, company
// distribution, and salary stats across member records.
func Summarize(clusters []Cluster) Summary {
	summary := Summary{Companies: make(map[string]int)}

	var salarySum float64
	var salaryMin, salaryMax float64
	salarySamples := 0

	for _, c := range clusters {
		if c.Count > 1 {
			summary.NumClusters++
		} else {
			summary.NumSingleMarkers++
		}
		summary.TotalJobs += c.Count

		for _, m := range c.Members {
			if m.Record == nil {
				continue
			}
			if m.Record.Company != "" {
				summary.Companies[m.Record.Company]++
			}

			// Midpoint of the posted range, when either bound parses.
			if mid, ok := salaryMidpoint(m.Record.SalaryMin, m.Record.SalaryMax); ok {
				if salarySamples == 0 || mid < salaryMin {
					salaryMin = mid
				}
				if salarySamples == 0 || mid > salaryMax {
					salaryMax = mid
				}
				salarySum += mid
				salarySamples++
			}
		}
	}

	if salarySamples > 0 {
		summary.Salary = &SalaryStats{
			Min:     salaryMin,
			Max:     salaryMax,
			Average: salarySum / float64(salarySamples),
			Samples: salarySamples,
		}
	}

	summary.TopCompanies = topCompanies(summary.Companies, 10)
	return summary
}

func salaryMidpoint(minStr, maxStr *string) (float64, bool) {
	var vals []float64
	for _, s := range []*string{minStr, maxStr} {
		if s == nil {
			continue
		}
		if v, err := strconv.ParseFloat(*s, 64); err == nil {
			vals = append(vals, v)
		}
	}
	switch len(vals) {
	case 0:
		return 0, false
	case 1:
		return vals[0], true
	default:
		return (vals[0] + vals[1]) / 2, true
	}
}

func topCompanies(counts map[string]int, n int) []CompanyCount {
	out := make([]CompanyCount, 0, len(counts))
	for company, count := range counts {
		out = append(out, CompanyCount{Company: company, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Company < out[j].Company
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
