package wateruse

import (
	"math"
	"time"
)

// SiteSummary is the one-row quality assessment for a site, as written to
// the combined QA workbook. A site absent from the service gets a row with
// InService false and every other field zero.
type SiteSummary struct {
	Site         string    `json:"site"`
	InService    bool      `json:"in_service"`
	MeasTypes    int       `json:"meas_types"` // measurements available
	MeasUsed     int       `json:"meas_used"`  // measurements present in the extraction
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	TotalDays    int       `json:"total_days"`
	DaysWithData int       `json:"days_with_data"`
	TotalReports int       `json:"total_reports"`
	MinExtraction  float64 `json:"min_extraction"`  // min positive volume, 3 dp
	MeanExtraction float64 `json:"mean_extraction"` // spike-parameter mean, 1 dp
	MaxExtraction  float64 `json:"max_extraction"`  // max volume, 1 dp
	NegativeValues int     `json:"negative_values"`
	SD5            int     `json:"sd5"`
	SD10           int     `json:"sd10"`
	SD20           int     `json:"sd20"`
}

// BuildSummary condenses a pipeline result into the site's QA row.
// measTypes is the number of water-use measurements the service lists for
// the site.
func BuildSummary(site string, measTypes int, res *Result) SiteSummary {
	s := SiteSummary{Site: site, InService: true, MeasTypes: measTypes}
	if res == nil || len(res.Cleaned) == 0 {
		return s
	}

	seen := make(map[string]bool)
	start, end := res.Cleaned[0].Date, res.Cleaned[0].Date
	minPos, maxVol := math.Inf(1), math.Inf(-1)
	for _, rec := range res.Cleaned {
		seen[rec.Measurement] = true
		if rec.Date.Before(start) {
			start = rec.Date
		}
		if rec.Date.After(end) {
			end = rec.Date
		}
		if rec.Volume > 0 && rec.Volume < minPos {
			minPos = rec.Volume
		}
		if rec.Volume > maxVol {
			maxVol = rec.Volume
		}
	}

	s.MeasUsed = len(seen)
	s.StartDate = start
	s.EndDate = end
	s.TotalDays = int(end.Sub(start).Hours()/24) + 1
	s.DaysWithData = len(res.Daily)
	s.TotalReports = len(res.Cleaned)
	if !math.IsInf(minPos, 1) {
		s.MinExtraction = roundTo(minPos, 3)
	}
	if !math.IsNaN(res.SpikeParams.Mean) {
		s.MeanExtraction = roundTo(res.SpikeParams.Mean, 1)
	}
	if !math.IsInf(maxVol, -1) {
		s.MaxExtraction = roundTo(maxVol, 1)
	}
	for _, m := range res.Negatives {
		s.NegativeValues += m.Count
	}
	for _, d := range res.Daily {
		s.SD5 += d.SD5
		s.SD10 += d.SD10
		s.SD20 += d.SD20
	}
	return s
}
