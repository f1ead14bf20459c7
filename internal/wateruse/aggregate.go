package wateruse

import (
	"math"
	"sort"
	"time"
)

// DailyStats groups a spike-flagged series by calendar date. Each day keeps
// its representative measurement label (the lexicographic maximum when a day
// mixes measurements), the reading count, and the per-threshold spike sums.
// Results are sorted by date.
func DailyStats(records []VolumeRecord) []DailyStat {
	byDate := make(map[time.Time]*DailyStat)
	for _, rec := range records {
		d := rec.Date
		stat, ok := byDate[d]
		if !ok {
			stat = &DailyStat{Date: d, Month: MonthKey(d)}
			byDate[d] = stat
		}
		if rec.Measurement > stat.Measurement {
			stat.Measurement = rec.Measurement
		}
		stat.Readings++
		if rec.Flags.SD5 {
			stat.SD5++
		}
		if rec.Flags.SD10 {
			stat.SD10++
		}
		if rec.Flags.SD20 {
			stat.SD20++
		}
	}

	daily := make([]DailyStat, 0, len(byDate))
	for _, stat := range byDate {
		daily = append(daily, *stat)
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date.Before(daily[j].Date)
	})
	return daily
}

// MonthlyStats groups daily statistics by calendar month. DaysWithData
// counts the daily rows in the month; TotalReports sums their reading
// counts. Results are sorted by month key.
func MonthlyStats(daily []DailyStat) []MonthlyStat {
	byMonth := make(map[string]*MonthlyStat)
	for _, d := range daily {
		stat, ok := byMonth[d.Month]
		if !ok {
			stat = &MonthlyStat{Month: d.Month}
			byMonth[d.Month] = stat
		}
		if d.Measurement > stat.Measurement {
			stat.Measurement = d.Measurement
		}
		stat.DaysWithData++
		stat.TotalReports += d.Readings
		stat.SD5 += d.SD5
		stat.SD10 += d.SD10
		stat.SD20 += d.SD20
	}

	monthly := make([]MonthlyStat, 0, len(byMonth))
	for _, stat := range byMonth {
		monthly = append(monthly, *stat)
	}
	sort.Slice(monthly, func(i, j int) bool {
		return monthly[i].Month < monthly[j].Month
	})
	return monthly
}

// ExtractionStats computes monthly min/mean/max of the positive volume
// readings. It operates on the pre-aggregation series, not on the daily
// table: the statistics describe individual readings, not daily totals.
// Min is rounded to 3 decimal places, mean and max to 1.
func ExtractionStats(records []VolumeRecord) []MonthlyExtraction {
	type acc struct {
		min, max, sum float64
		n             int
	}
	byMonth := make(map[string]*acc)
	for _, rec := range records {
		if rec.Unresolved || rec.Volume <= 0 {
			continue
		}
		key := MonthKey(rec.Time)
		a, ok := byMonth[key]
		if !ok {
			a = &acc{min: rec.Volume, max: rec.Volume}
			byMonth[key] = a
		}
		a.min = math.Min(a.min, rec.Volume)
		a.max = math.Max(a.max, rec.Volume)
		a.sum += rec.Volume
		a.n++
	}

	stats := make([]MonthlyExtraction, 0, len(byMonth))
	for key, a := range byMonth {
		stats = append(stats, MonthlyExtraction{
			Month: key,
			Min:   roundTo(a.min, 3),
			Mean:  roundTo(a.sum/float64(a.n), 1),
			Max:   roundTo(a.max, 1),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Month < stats[j].Month
	})
	return stats
}

// MergeExtraction joins monthly extraction statistics onto the monthly table
// by month key with left-join semantics: months without positive volume keep
// a nil Extraction rather than zeros.
func MergeExtraction(monthly []MonthlyStat, extraction []MonthlyExtraction) []MonthlyStat {
	byMonth := make(map[string]MonthlyExtraction, len(extraction))
	for _, e := range extraction {
		byMonth[e.Month] = e
	}

	merged := make([]MonthlyStat, len(monthly))
	copy(merged, monthly)
	for i := range merged {
		if e, ok := byMonth[merged[i].Month]; ok {
			e := e
			merged[i].Extraction = &e
		}
	}
	return merged
}

// CountReadingsByDay counts raw readings per calendar date over the
// inclusive range [from, to], filling dates without readings with zero.
func CountReadingsByDay(readings []Reading, from, to time.Time) []DailyCount {
	byDate := make(map[time.Time]int)
	for _, r := range readings {
		byDate[DateOf(r.Time)]++
	}

	var counts []DailyCount
	for d := DateOf(from); !d.After(DateOf(to)); d = d.AddDate(0, 0, 1) {
		counts = append(counts, DailyCount{Date: d, Readings: byDate[d]})
	}
	return counts
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
