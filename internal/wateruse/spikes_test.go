package wateruse

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSpikeParams(t *testing.T) {
	t.Run("estimates over positive volumes only", func(t *testing.T) {
		records := []VolumeRecord{
			volumeAt(2020, time.March, 1, 2),
			volumeAt(2020, time.March, 2, 4),
			volumeAt(2020, time.March, 3, 6),
			volumeAt(2020, time.March, 4, 0), // excluded from estimation
		}
		params := ComputeSpikeParams(records)
		assert.Equal(t, 3, params.N)
		assert.InDelta(t, 4.0, params.Mean, 1e-9)
		assert.InDelta(t, 2.0, params.SD, 1e-9, "sample standard deviation")
	})

	t.Run("no positive volumes", func(t *testing.T) {
		params := ComputeSpikeParams([]VolumeRecord{volumeAt(2020, time.March, 1, 0)})
		assert.Zero(t, params.N)
		assert.True(t, math.IsNaN(params.Mean))
		assert.True(t, params.Degenerate())
	})

	t.Run("single positive volume has undefined sd", func(t *testing.T) {
		params := ComputeSpikeParams([]VolumeRecord{volumeAt(2020, time.March, 1, 7)})
		assert.Equal(t, 1, params.N)
		assert.True(t, math.IsNaN(params.SD))
		assert.True(t, params.Degenerate())
	})
}

func TestSpikeParamsDegenerate(t *testing.T) {
	tests := []struct {
		name       string
		params     SpikeParams
		degenerate bool
	}{
		{"healthy sample", SpikeParams{Mean: 10, SD: 2, N: 150}, false},
		{"low variance", SpikeParams{Mean: 10, SD: 0.5, N: 150}, true},
		{"small sample", SpikeParams{Mean: 10, SD: 2, N: 100}, true},
		{"boundary sd", SpikeParams{Mean: 10, SD: 1, N: 101}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.degenerate, tt.params.Degenerate())
		})
	}
}

func TestDetectSpikes(t *testing.T) {
	params := SpikeParams{Mean: 10, SD: 2, N: 150}

	t.Run("thresholds evaluated independently", func(t *testing.T) {
		tests := []struct {
			name   string
			volume float64
			want   SpikeFlags
		}{
			{"below all thresholds", 19, SpikeFlags{}},
			{"above 5sd only", 21, SpikeFlags{SD5: true}},
			{"above 5sd and 10sd", 31, SpikeFlags{SD5: true, SD10: true}},
			{"above all thresholds", 51, SpikeFlags{SD5: true, SD10: true, SD20: true}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				flagged := DetectSpikes([]VolumeRecord{volumeAt(2020, time.March, 1, tt.volume)}, params)
				require.Len(t, flagged, 1)
				assert.Equal(t, tt.want, flagged[0].Flags)
			})
		}
	})

	t.Run("flags are monotonic across thresholds", func(t *testing.T) {
		var records []VolumeRecord
		for v := 0.0; v <= 60; v += 0.5 {
			records = append(records, volumeAt(2020, time.March, 1, v))
		}
		for _, rec := range DetectSpikes(records, params) {
			if rec.Flags.SD20 {
				assert.True(t, rec.Flags.SD10)
			}
			if rec.Flags.SD10 {
				assert.True(t, rec.Flags.SD5)
			}
		}
	})

	t.Run("degenerate sample suppresses all flags", func(t *testing.T) {
		flagged := DetectSpikes(
			[]VolumeRecord{volumeAt(2020, time.March, 1, 1e6)},
			SpikeParams{Mean: 10, SD: 2, N: 50},
		)
		require.Len(t, flagged, 1)
		assert.Equal(t, SpikeFlags{}, flagged[0].Flags)
	})

	t.Run("input series is not mutated", func(t *testing.T) {
		records := []VolumeRecord{volumeAt(2020, time.March, 1, 100)}
		DetectSpikes(records, params)
		assert.Equal(t, SpikeFlags{}, records[0].Flags)
	})
}
