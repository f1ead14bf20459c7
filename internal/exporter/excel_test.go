package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Data-to-Knowledge/WaterUseQA/internal/wateruse"
)

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestWriteSiteSummary(t *testing.T) {
	dir := t.TempDir()
	w := NewExcelWriter(dir, nil)

	measurements := []wateruse.MeasurementInfo{
		{
			Name: "Water Meter",
			From: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	negatives := []wateruse.NegativeMonth{
		{Month: "2020-09", Count: 2, Sum: -7},
	}
	monthly := []wateruse.MonthlyStat{
		{
			Month: "2020-09", Measurement: "Water Meter",
			DaysWithData: 25, TotalReports: 100,
			Extraction: &wateruse.MonthlyExtraction{Min: 0.125, Mean: 42.5, Max: 500},
			SD5:        1,
		},
		{Month: "2020-10", Measurement: "Water Meter", DaysWithData: 3, TotalReports: 12},
	}

	require.NoError(t, w.WriteSiteSummary("site.xlsx", measurements, negatives, monthly))

	f, err := excelize.OpenFile(filepath.Join(dir, "site.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"HilltopMeasurements", "NegativesRemoved", "MonthlyStatistics"},
		f.GetSheetList(), "default sheet removed")

	assert.Equal(t, "Measurement", cellValue(t, f, "HilltopMeasurements", "A1"))
	assert.Equal(t, "Water Meter", cellValue(t, f, "HilltopMeasurements", "A2"))
	assert.Equal(t, "2018-01-01", cellValue(t, f, "HilltopMeasurements", "B2"))
	assert.Equal(t, "2020-12-31", cellValue(t, f, "HilltopMeasurements", "C2"))

	assert.Equal(t, "2020-09", cellValue(t, f, "NegativesRemoved", "A2"))
	assert.Equal(t, "2", cellValue(t, f, "NegativesRemoved", "B2"))
	assert.Equal(t, "-7", cellValue(t, f, "NegativesRemoved", "C2"))

	assert.Equal(t, "2020-09", cellValue(t, f, "MonthlyStatistics", "A2"))
	assert.Equal(t, "0.125", cellValue(t, f, "MonthlyStatistics", "E2"))
	assert.Equal(t, "42.5", cellValue(t, f, "MonthlyStatistics", "F2"))
	assert.Equal(t, "500", cellValue(t, f, "MonthlyStatistics", "G2"))
	assert.Equal(t, "1", cellValue(t, f, "MonthlyStatistics", "H2"))

	// Month with no positive volume keeps blank extraction cells.
	assert.Equal(t, "", cellValue(t, f, "MonthlyStatistics", "E3"))
	assert.Equal(t, "", cellValue(t, f, "MonthlyStatistics", "F3"))
	assert.Equal(t, "", cellValue(t, f, "MonthlyStatistics", "G3"))
}

func TestWriteQASummary(t *testing.T) {
	dir := t.TempDir()
	w := NewExcelWriter(dir, nil)

	rows := []wateruse.SiteSummary{
		{
			Site: "BY20/0042", InService: true,
			MeasTypes: "Water Meter", MeasUsed: "Water Meter",
			StartDate:     time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2020, 10, 11, 0, 0, 0, 0, time.UTC),
			TotalDays:     41, DaysWithData: 38, TotalReports: 151,
			MinExtraction: 10, MeanExtraction: 13.2, MaxExtraction: 500,
			NegativeValues: 2, SD5: 1,
		},
		{Site: "BY20/0099"},
	}

	require.NoError(t, w.WriteQASummary("qa.xlsx", rows))

	f, err := excelize.OpenFile(filepath.Join(dir, "qa.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"QualityAssessment"}, f.GetSheetList())
	assert.Equal(t, "Site", cellValue(t, f, "QualityAssessment", "A1"))

	assert.Equal(t, "BY20/0042", cellValue(t, f, "QualityAssessment", "A2"))
	assert.Equal(t, "Y", cellValue(t, f, "QualityAssessment", "B2"))
	assert.Equal(t, "2020-09-01", cellValue(t, f, "QualityAssessment", "E2"))
	assert.Equal(t, "41", cellValue(t, f, "QualityAssessment", "G2"))
	assert.Equal(t, "500", cellValue(t, f, "QualityAssessment", "L2"))
	assert.Equal(t, "1", cellValue(t, f, "QualityAssessment", "N2"))

	// Missing sites get only the site name and an out-of-service marker.
	assert.Equal(t, "BY20/0099", cellValue(t, f, "QualityAssessment", "A3"))
	assert.Equal(t, "N", cellValue(t, f, "QualityAssessment", "B3"))
	assert.Equal(t, "", cellValue(t, f, "QualityAssessment", "C3"))
	assert.Equal(t, "", cellValue(t, f, "QualityAssessment", "G3"))
}
