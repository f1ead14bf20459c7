package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Data-to-Knowledge/WaterUseQA/internal/missdata"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/wateruse"
)

// CSVWriter writes report CSV files into an output directory.
type CSVWriter struct {
	outDir string
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at outDir.
func NewCSVWriter(outDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{outDir: outDir, logger: logger}
}

// WriteOptions configures CSV writing behaviour.
type WriteOptions struct {
	Headers []string
	Records [][]string
	// BOMPrefix adds a UTF-8 BOM so Excel recognises the encoding.
	BOMPrefix bool
}

// WriteCSV writes one CSV file under the output directory.
func (w *CSVWriter) WriteCSV(filename string, options WriteOptions) error {
	path := filepath.Join(w.outDir, filename)
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

// PlotRefs carries consent reference lines for the plot series export.
type PlotRefs struct {
	MaxRateLPS       float64
	MaxDailyVolumeM3 float64
	// MultiDayAvgM3 is the consented multi-day volume averaged per day of
	// the return period, the reference for the rolling mean.
	MultiDayAvgM3 float64
}

// WritePlotSeries writes the gap-filled daily series for external plot
// renderers. Missing volumes stay empty cells, not zeros, and the same
// consent reference values repeat on every row so faceted renderers can
// draw them without a second input.
func (w *CSVWriter) WritePlotSeries(filename string, points []wateruse.DailyPoint, refs *PlotRefs) error {
	headers := []string{"Date", "Month", "Day", "Readings", "Volume", "Rate", "MA"}
	if refs != nil {
		headers = append(headers, "MaxDailyVolume", "MaxRate", "MultiDayAvg")
	}

	records := make([][]string, 0, len(points))
	for _, p := range points {
		row := []string{
			p.Date.Format("2006-01-02"),
			p.Month,
			strconv.Itoa(p.Day),
			strconv.Itoa(p.Readings),
			formatFloat(p.Volume),
			formatFloat(p.Rate),
			formatFloat(p.MA),
		}
		if refs != nil {
			row = append(row,
				formatFloat(refs.MaxDailyVolumeM3),
				formatFloat(refs.MaxRateLPS),
				formatFloat(refs.MultiDayAvgM3),
			)
		}
		records = append(records, row)
	}
	return w.WriteCSV(filename, WriteOptions{Headers: headers, Records: records})
}

// WriteWeeklyReport writes the weekly missing-data report.
func (w *CSVWriter) WriteWeeklyReport(filename string, statuses []missdata.WeeklyStatus) error {
	records := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		mode := "No data"
		if s.ModeKnown {
			mode = strconv.Itoa(s.Mode)
		}
		complete := s.Note
		if complete == "" {
			complete = strconv.FormatFloat(s.PercentComplete, 'f', 1, 64)
		}
		last := ""
		if !s.LastReport.IsZero() {
			last = s.LastReport.Format("2006-01-02 15:04:05")
		}
		records = append(records, []string{s.Site, mode, complete, last})
	}
	return w.WriteCSV(filename, WriteOptions{
		Headers:   []string{"Site", "Mode", "PercComplete", "LastReport"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteModes writes the compiled reporting-mode table consumed by later
// weekly reports.
func (w *CSVWriter) WriteModes(filename string, modes []missdata.Mode) error {
	records := make([][]string, 0, len(modes))
	for _, m := range modes {
		value := "No data"
		if m.Known {
			value = strconv.Itoa(m.Mode)
		}
		records = append(records, []string{m.Site, value})
	}
	return w.WriteCSV(filename, WriteOptions{
		Headers:   []string{"Site", "Mode"},
		Records:   records,
		BOMPrefix: true,
	})
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
