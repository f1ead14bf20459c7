package wateruse

import (
	"sort"
)

// SummarizeNegatives groups the negative volume readings by calendar month
// and returns their count and sum per month, sorted by month key.
//
// The summary must be computed on the pre-filter series; FilterNegatives
// removes the records it reports on. Unresolved records carry no volume and
// are excluded.
func SummarizeNegatives(records []VolumeRecord) []NegativeMonth {
	byMonth := make(map[string]*NegativeMonth)
	for _, rec := range records {
		if rec.Unresolved || rec.Volume >= 0 {
			continue
		}
		key := MonthKey(rec.Time)
		m, ok := byMonth[key]
		if !ok {
			m = &NegativeMonth{Month: key}
			byMonth[key] = m
		}
		m.Count++
		m.Sum += rec.Volume
	}

	summary := make([]NegativeMonth, 0, len(byMonth))
	for _, m := range byMonth {
		summary = append(summary, *m)
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Month < summary[j].Month
	})
	return summary
}

// FilterNegatives returns the records with volume >= 0. Unresolved records
// are dropped here as well: they have no defined volume to compare.
func FilterNegatives(records []VolumeRecord) []VolumeRecord {
	filtered := make([]VolumeRecord, 0, len(records))
	for _, rec := range records {
		if rec.Unresolved || rec.Volume < 0 {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}
