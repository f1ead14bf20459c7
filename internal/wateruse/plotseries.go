package wateruse

import (
	"math"
	"time"
)

// litresPerSecond converts a daily volume in m3 to an average rate in L/s.
const litresPerSecond = 1000.0 / 86400.0

// DailyPoint is one calendar date of the gap-filled plotting series.
// Volume, Rate and MA are NaN for dates with no readings so that plots
// distinguish "no data" from "zero volume"; Readings is 0 on those dates.
type DailyPoint struct {
	Date     time.Time `json:"date"`
	Month    string    `json:"month"` // "YYYY-MM"
	Day      int       `json:"day"`
	Readings int       `json:"readings"`
	Volume   float64   `json:"volume"` // m3, NaN when missing
	Rate     float64   `json:"rate"`   // L/s, NaN when missing
	MA       float64   `json:"ma"`     // trailing rolling mean of Volume, NaN until enough data
}

// PlotSeriesOptions configures the gap-filled daily series.
type PlotSeriesOptions struct {
	// RollingWindow is the trailing rolling-mean window in days.
	// Zero disables the rolling mean.
	RollingWindow int
	// MinObservations is the minimum number of non-missing days required in
	// a window before the rolling mean is emitted. Zero means a full window
	// is required.
	MinObservations int
}

// WaterYearStart returns 1 July of the water year containing d: July of the
// previous calendar year when d falls in January-June, July of the same year
// otherwise.
func WaterYearStart(d time.Time) time.Time {
	year := d.Year()
	if d.Month() <= time.June {
		year--
	}
	return time.Date(year, time.July, 1, 0, 0, 0, 0, d.Location())
}

// PlotSeries aggregates a cleaned volume series to daily totals and reindexes
// them onto every calendar date from the start of the water year containing
// the first observation through the last observed date. Dates without
// readings get a zero reading count and missing (NaN) volume.
func PlotSeries(records []VolumeRecord, opts PlotSeriesOptions) []DailyPoint {
	if len(records) == 0 {
		return nil
	}

	type dayTotal struct {
		readings int
		volume   float64
	}
	byDate := make(map[time.Time]*dayTotal)
	first, last := records[0].Date, records[0].Date
	for _, rec := range records {
		if rec.Unresolved {
			continue
		}
		d := rec.Date
		t, ok := byDate[d]
		if !ok {
			t = &dayTotal{}
			byDate[d] = t
		}
		t.readings++
		t.volume += rec.Volume
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	if len(byDate) == 0 {
		return nil
	}

	var points []DailyPoint
	for d := WaterYearStart(first); !d.After(last); d = d.AddDate(0, 0, 1) {
		p := DailyPoint{
			Date:   d,
			Month:  MonthKey(d),
			Day:    d.Day(),
			Volume: math.NaN(),
			Rate:   math.NaN(),
			MA:     math.NaN(),
		}
		if t, ok := byDate[d]; ok {
			p.Readings = t.readings
			p.Volume = t.volume
			p.Rate = t.volume * litresPerSecond
		}
		points = append(points, p)
	}

	if opts.RollingWindow > 0 {
		applyRollingMean(points, opts.RollingWindow, opts.MinObservations)
	}
	return points
}

// applyRollingMean fills MA with the trailing mean of Volume over the last
// window days, skipping missing days, once at least minObs of them are
// present.
func applyRollingMean(points []DailyPoint, window, minObs int) {
	if minObs <= 0 || minObs > window {
		minObs = window
	}
	for i := window - 1; i < len(points); i++ {
		var (
			sum float64
			n   int
		)
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(points[j].Volume) {
				continue
			}
			sum += points[j].Volume
			n++
		}
		if n >= minObs {
			points[i].MA = sum / float64(n)
		}
	}
}
