package wateruse

import (
	"time"
)

// MeasurementKind classifies the native unit family of a water-use
// measurement as reported by the time-series service.
type MeasurementKind int

const (
	KindUnknown MeasurementKind = iota
	// KindComplianceVolume is a volume reading in m3, reported per interval.
	KindComplianceVolume
	// KindWaterMeter is a cumulative meter total in m3. Volumes are derived
	// by differencing consecutive readings.
	KindWaterMeter
	// KindVolume is a direct volume reading in m3.
	KindVolume
	// KindVolumeFlow is a volume reading derived upstream from an
	// instantaneous flow measurement, already expressed in m3.
	KindVolumeFlow
	// KindVolumeAverageFlow is a volume reading derived upstream from an
	// average flow measurement, already expressed in m3.
	KindVolumeAverageFlow
)

// WaterUseMeasurements lists the measurement names used for water-use QA.
// Measurements outside this list are ignored during extraction.
var WaterUseMeasurements = []string{
	"Compliance Volume",
	"Water Meter",
	"Volume",
	"Volume [Flow]",
	"Volume [Average Flow]",
}

// ParseMeasurementKind maps a service measurement name to its kind.
func ParseMeasurementKind(name string) MeasurementKind {
	switch name {
	case "Compliance Volume":
		return KindComplianceVolume
	case "Water Meter":
		return KindWaterMeter
	case "Volume":
		return KindVolume
	case "Volume [Flow]":
		return KindVolumeFlow
	case "Volume [Average Flow]":
		return KindVolumeAverageFlow
	default:
		return KindUnknown
	}
}

// String returns the service measurement name for the kind.
func (k MeasurementKind) String() string {
	switch k {
	case KindComplianceVolume:
		return "Compliance Volume"
	case KindWaterMeter:
		return "Water Meter"
	case KindVolume:
		return "Volume"
	case KindVolumeFlow:
		return "Volume [Flow]"
	case KindVolumeAverageFlow:
		return "Volume [Average Flow]"
	default:
		return "Unknown"
	}
}

// Cumulative reports whether readings of this kind are running meter totals
// rather than per-interval volumes.
func (k MeasurementKind) Cumulative() bool {
	return k == KindWaterMeter
}

// Reading is a single raw observation from the time-series service.
// Readings are immutable once ingested.
type Reading struct {
	Measurement string    `json:"measurement"`
	Kind        MeasurementKind `json:"kind"`
	Time        time.Time `json:"time"`
	Value       float64   `json:"value"`
}

// SpikeFlags marks a volume record as statistically extreme relative to the
// site's own positive-volume distribution. The three thresholds are
// independent and monotonic: a record flagged at 20 sd is also flagged at
// 10 sd and 5 sd.
type SpikeFlags struct {
	SD5  bool `json:"sd5"`
	SD10 bool `json:"sd10"`
	SD20 bool `json:"sd20"`
}

// VolumeRecord is a Reading normalised to a volume in cubic metres.
//
// The first reading of a cumulative meter run has no prior value to
// difference against; it is kept with Unresolved set rather than silently
// dropped or defaulted to zero.
type VolumeRecord struct {
	Measurement string     `json:"measurement"`
	Time        time.Time  `json:"time"`
	Date        time.Time  `json:"date"`
	Volume      float64    `json:"volume"`
	Unresolved  bool       `json:"unresolved,omitempty"`
	Flags       SpikeFlags `json:"flags"`
}

// NegativeMonth summarises the negative volume readings within one calendar
// month, retained for audit before the readings are removed.
type NegativeMonth struct {
	Month string  `json:"month"` // "YYYY-MM"
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
}

// DailyStat aggregates volume records over one calendar date.
type DailyStat struct {
	Date        time.Time `json:"date"`
	Month       string    `json:"month"` // "YYYY-MM"
	Measurement string    `json:"measurement"`
	Readings    int       `json:"readings"`
	SD5         int       `json:"sd5"`
	SD10        int       `json:"sd10"`
	SD20        int       `json:"sd20"`
}

// MonthlyExtraction holds the min/mean/max of positive volume readings
// within one calendar month.
type MonthlyExtraction struct {
	Month string  `json:"month"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
}

// MonthlyStat aggregates daily statistics over one calendar month.
// Extraction is nil for months with no positive volume readings.
type MonthlyStat struct {
	Month        string             `json:"month"` // "YYYY-MM", sorts in calendar order
	Measurement  string             `json:"measurement"`
	DaysWithData int                `json:"days_with_data"`
	TotalReports int                `json:"total_reports"`
	SD5          int                `json:"sd5"`
	SD10         int                `json:"sd10"`
	SD20         int                `json:"sd20"`
	Extraction   *MonthlyExtraction `json:"extraction,omitempty"`
}

// DailyCount is a gap-filled reading count for one calendar date.
type DailyCount struct {
	Date     time.Time `json:"date"`
	Readings int       `json:"readings"`
}

// MonthKey renders the calendar month of t as a zero-padded "YYYY-MM" key,
// which sorts lexicographically in calendar order.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
