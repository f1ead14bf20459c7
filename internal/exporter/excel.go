package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/Data-to-Knowledge/WaterUseQA/internal/wateruse"
)

// ExcelWriter writes QA workbooks into an output directory.
type ExcelWriter struct {
	outDir string
	logger *slog.Logger
}

// NewExcelWriter creates an Excel writer rooted at outDir.
func NewExcelWriter(outDir string, logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{outDir: outDir, logger: logger}
}

// WriteSiteSummary writes one site's summary workbook: the measurement list,
// the negative values removed during cleaning, and the monthly statistics.
func (w *ExcelWriter) WriteSiteSummary(filename string, measurements []wateruse.MeasurementInfo,
	negatives []wateruse.NegativeMonth, monthly []wateruse.MonthlyStat) error {

	f := excelize.NewFile()
	defer f.Close()

	if err := writeMeasurementSheet(f, measurements); err != nil {
		return err
	}
	if err := writeNegativesSheet(f, negatives); err != nil {
		return err
	}
	if err := writeMonthlySheet(f, monthly); err != nil {
		return err
	}
	// Drop the default sheet so the workbook opens on the measurement list.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	return w.save(f, filename)
}

func writeMeasurementSheet(f *excelize.File, measurements []wateruse.MeasurementInfo) error {
	const sheet = "HilltopMeasurements"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, "Measurement", "From", "To"); err != nil {
		return err
	}
	for i, m := range measurements {
		if err := setRow(f, sheet, i+2, m.Name, formatDate(m.From), formatDate(m.To)); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "C", 20)
}

func writeNegativesSheet(f *excelize.File, negatives []wateruse.NegativeMonth) error {
	const sheet = "NegativesRemoved"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, "Month", "Negative Value Count", "Negative Value Sum"); err != nil {
		return err
	}
	for i, n := range negatives {
		if err := setRow(f, sheet, i+2, n.Month, n.Count, n.Sum); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "C", 20)
}

func writeMonthlySheet(f *excelize.File, monthly []wateruse.MonthlyStat) error {
	const sheet = "MonthlyStatistics"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	headers := []any{"Month", "MeasType", "DaysWithData", "TotalReports",
		"MinExtraction", "MeanExtraction", "MaxExtraction",
		"Spikes > 5sd", "Spikes > 10sd", "Spikes > 20sd"}
	if err := setRow(f, sheet, 1, headers...); err != nil {
		return err
	}
	for i, m := range monthly {
		// Months with no positive volume keep blank extraction cells.
		var minExt, meanExt, maxExt any
		if m.Extraction != nil {
			minExt, meanExt, maxExt = m.Extraction.Min, m.Extraction.Mean, m.Extraction.Max
		}
		err := setRow(f, sheet, i+2, m.Month, m.Measurement, m.DaysWithData, m.TotalReports,
			minExt, meanExt, maxExt, m.SD5, m.SD10, m.SD20)
		if err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 10); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 20); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "J", 15)
}

// WriteQASummary writes the combined quality-assessment workbook: one row
// per site. Sites absent from the service get a row with InService "N" and
// the remaining columns blank.
func (w *ExcelWriter) WriteQASummary(filename string, rows []wateruse.SiteSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "QualityAssessment"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []any{"Site", "InService", "MeasTypes", "MeasUsed", "StartDate", "EndDate",
		"TotalDays", "DaysWithData", "TotalReports", "MinExtraction", "MeanExtraction",
		"MaxExtraction", "NegativeValues", "Spikes > 5sd", "Spikes > 10sd", "Spikes > 20sd"}
	if err := setRow(f, sheet, 1, headers...); err != nil {
		return err
	}

	for i, s := range rows {
		var cells []any
		if !s.InService {
			cells = []any{s.Site, "N"}
		} else {
			cells = []any{s.Site, "Y", s.MeasTypes, s.MeasUsed,
				formatDate(s.StartDate), formatDate(s.EndDate),
				s.TotalDays, s.DaysWithData, s.TotalReports,
				s.MinExtraction, s.MeanExtraction, s.MaxExtraction,
				s.NegativeValues, s.SD5, s.SD10, s.SD20}
		}
		if err := setRow(f, sheet, i+2, cells...); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 15); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 8); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "P", 13); err != nil {
		return err
	}
	return w.save(f, filename)
}

func (w *ExcelWriter) save(f *excelize.File, filename string) error {
	path := filepath.Join(w.outDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	w.logger.Info("wrote workbook", slog.String("path", path))
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
