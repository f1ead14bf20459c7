package wateruse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func volumeAt(year int, month time.Month, day int, volume float64) VolumeRecord {
	ts := time.Date(year, month, day, 8, 0, 0, 0, time.UTC)
	return VolumeRecord{
		Measurement: "Compliance Volume",
		Time:        ts,
		Date:        DateOf(ts),
		Volume:      volume,
	}
}

func TestSummarizeNegatives(t *testing.T) {
	t.Run("counts and sums per month before filtering", func(t *testing.T) {
		records := []VolumeRecord{
			volumeAt(2020, time.March, 1, -2),
			volumeAt(2020, time.March, 5, -2),
			volumeAt(2020, time.March, 9, 5),
			volumeAt(2020, time.March, 12, -1),
		}
		summary := SummarizeNegatives(records)
		require.Len(t, summary, 1)
		assert.Equal(t, "2020-03", summary[0].Month)
		assert.Equal(t, 3, summary[0].Count)
		assert.Equal(t, -5.0, summary[0].Sum)
	})

	t.Run("months sorted and zero-padded", func(t *testing.T) {
		records := []VolumeRecord{
			volumeAt(2021, time.February, 2, -1),
			volumeAt(2021, time.January, 15, -3),
		}
		summary := SummarizeNegatives(records)
		require.Len(t, summary, 2)
		assert.Equal(t, "2021-01", summary[0].Month)
		assert.Equal(t, "2021-02", summary[1].Month)
	})

	t.Run("unresolved records carry no volume", func(t *testing.T) {
		rec := volumeAt(2020, time.March, 1, -9)
		rec.Unresolved = true
		assert.Empty(t, SummarizeNegatives([]VolumeRecord{rec}))
	})
}

func TestFilterNegatives(t *testing.T) {
	unresolved := volumeAt(2020, time.March, 2, 0)
	unresolved.Unresolved = true
	records := []VolumeRecord{
		volumeAt(2020, time.March, 1, -2),
		unresolved,
		volumeAt(2020, time.March, 3, 0),
		volumeAt(2020, time.March, 4, 5),
	}

	filtered := FilterNegatives(records)
	require.Len(t, filtered, 2)
	assert.Equal(t, 0.0, filtered[0].Volume, "zero volumes survive the filter")
	assert.Equal(t, 5.0, filtered[1].Volume)

	// The input series is untouched.
	assert.Len(t, records, 4)
}
