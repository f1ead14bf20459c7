package wateruse

import (
	"math"
)

// SpikeParams holds the central-tendency measures used for spike detection,
// estimated over the positive-volume subset of a cleaned series.
type SpikeParams struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
	N    int     `json:"n"`
}

// Degenerate reports whether the sample is too small or too low-variance for
// spike flags to be meaningful. Degenerate samples suppress all flags
// instead of raising an error.
func (p SpikeParams) Degenerate() bool {
	return math.IsNaN(p.SD) || p.SD < 1 || p.N <= 100
}

// ComputeSpikeParams estimates the mean and sample standard deviation of the
// volume readings with volume > 0. Zero volumes are excluded from parameter
// estimation but stay in the series for aggregation.
func ComputeSpikeParams(records []VolumeRecord) SpikeParams {
	var (
		sum float64
		n   int
	)
	for _, rec := range records {
		if rec.Unresolved || rec.Volume <= 0 {
			continue
		}
		sum += rec.Volume
		n++
	}
	if n == 0 {
		return SpikeParams{Mean: math.NaN(), SD: math.NaN()}
	}

	mean := sum / float64(n)
	if n == 1 {
		return SpikeParams{Mean: mean, SD: math.NaN(), N: 1}
	}

	var ss float64
	for _, rec := range records {
		if rec.Unresolved || rec.Volume <= 0 {
			continue
		}
		d := rec.Volume - mean
		ss += d * d
	}
	// Sample standard deviation (n-1 denominator).
	sd := math.Sqrt(ss / float64(n-1))

	return SpikeParams{Mean: mean, SD: sd, N: n}
}

// DetectSpikes returns a copy of the series with spike flags attached.
// Each threshold (5, 10 and 20 standard deviations above the mean) is
// evaluated independently, so any record flagged at 20 sd is also flagged at
// 10 sd and 5 sd. Degenerate parameters leave every flag false.
func DetectSpikes(records []VolumeRecord, params SpikeParams) []VolumeRecord {
	flagged := make([]VolumeRecord, len(records))
	copy(flagged, records)

	if params.Degenerate() {
		return flagged
	}

	for i := range flagged {
		if flagged[i].Unresolved {
			continue
		}
		v := flagged[i].Volume
		flagged[i].Flags = SpikeFlags{
			SD5:  v > params.Mean+params.SD*5,
			SD10: v > params.Mean+params.SD*10,
			SD20: v > params.Mean+params.SD*20,
		}
	}
	return flagged
}
