package wateruse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummary(t *testing.T) {
	t.Run("missing site", func(t *testing.T) {
		s := BuildSummary("BY20/0042", 0, nil)
		assert.Equal(t, "BY20/0042", s.Site)
		assert.True(t, s.InService)
		assert.Zero(t, s.TotalReports)
	})

	t.Run("condenses a pipeline result", func(t *testing.T) {
		res, err := NewPipeline(PipelineConfig{}, nil).Run(context.Background(), pipelineFixture())
		require.NoError(t, err)

		s := BuildSummary("BY20/0042", 2, res)
		assert.True(t, s.InService)
		assert.Equal(t, 2, s.MeasTypes)
		assert.Equal(t, 1, s.MeasUsed)
		assert.Equal(t, time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC), s.StartDate)
		assert.Equal(t, time.Date(2020, 10, 11, 0, 0, 0, 0, time.UTC), s.EndDate)
		assert.Equal(t, 41, s.TotalDays)
		assert.Equal(t, len(res.Daily), s.DaysWithData)
		assert.Equal(t, 151, s.TotalReports)
		assert.Equal(t, 10.0, s.MinExtraction)
		assert.Equal(t, 500.0, s.MaxExtraction)
		assert.Equal(t, 2, s.NegativeValues)
		assert.Equal(t, 1, s.SD5)
	})
}
