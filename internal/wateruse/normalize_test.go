package wateruse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readingAt(day int, measurement string, value float64) Reading {
	return Reading{
		Measurement: measurement,
		Kind:        ParseMeasurementKind(measurement),
		Time:        time.Date(2020, 3, day, 10, 30, 0, 0, time.UTC),
		Value:       value,
	}
}

func TestNormalizeVolumes(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, NormalizeVolumes(nil))
	})

	t.Run("non-cumulative kinds are identity on value", func(t *testing.T) {
		for _, measurement := range []string{"Compliance Volume", "Volume", "Volume [Flow]", "Volume [Average Flow]"} {
			t.Run(measurement, func(t *testing.T) {
				readings := []Reading{
					readingAt(1, measurement, 12.5),
					readingAt(2, measurement, 0),
					readingAt(3, measurement, -4),
				}
				records := NormalizeVolumes(readings)
				require.Len(t, records, 3)
				for i, rec := range records {
					assert.False(t, rec.Unresolved)
					assert.Equal(t, readings[i].Value, rec.Volume)
					assert.Equal(t, time.Date(2020, 3, i+1, 0, 0, 0, 0, time.UTC), rec.Date)
				}
			})
		}
	})

	t.Run("cumulative meter is differenced", func(t *testing.T) {
		readings := []Reading{
			readingAt(1, "Water Meter", 10),
			readingAt(2, "Water Meter", 15),
			readingAt(3, "Water Meter", 12),
			readingAt(4, "Water Meter", 20),
		}
		records := NormalizeVolumes(readings)
		require.Len(t, records, 4)

		assert.True(t, records[0].Unresolved, "first reading of a run has no prior value")
		assert.Equal(t, 5.0, records[1].Volume)
		assert.Equal(t, -3.0, records[2].Volume)
		assert.Equal(t, 8.0, records[3].Volume)
	})

	t.Run("run restarts when the measurement changes", func(t *testing.T) {
		readings := []Reading{
			readingAt(1, "Water Meter", 100),
			readingAt(2, "Water Meter", 110),
			readingAt(3, "Compliance Volume", 7),
			readingAt(4, "Water Meter", 120),
			readingAt(5, "Water Meter", 125),
		}
		records := NormalizeVolumes(readings)
		require.Len(t, records, 5)

		assert.True(t, records[0].Unresolved)
		assert.Equal(t, 10.0, records[1].Volume)
		assert.Equal(t, 7.0, records[2].Volume)
		assert.True(t, records[3].Unresolved, "meter run broken by interleaved measurement")
		assert.Equal(t, 5.0, records[4].Volume)
	})
}
