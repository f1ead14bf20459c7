// Package missdata builds the missing-data reports: the per-site reporting
// mode (how many reports a site normally files per day) and the weekly
// completeness report that compares the last week's reports against that
// mode.
package missdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/Data-to-Knowledge/WaterUseQA/internal/wateruse"
)

// reportMeasurement is the series the missing-data reports watch. Every
// telemetered site files compliance volumes, so it is the reporting signal.
const reportMeasurement = "Compliance Volume"

// Mode is a site's normal reporting frequency in readings per day.
// Known is false when no data was available to establish one.
type Mode struct {
	Site  string
	Mode  int
	Known bool
}

// ComputeMode derives the reporting mode from gap-filled daily counts: the
// most frequent nonzero daily count, the smaller count winning ties. The
// second return is false when the site reported on no day at all.
func ComputeMode(counts []wateruse.DailyCount) (int, bool) {
	freq := make(map[int]int)
	for _, c := range counts {
		if c.Readings > 0 {
			freq[c.Readings]++
		}
	}
	if len(freq) == 0 {
		return 0, false
	}

	best, bestFreq := 0, 0
	for count, f := range freq {
		if f > bestFreq || (f == bestFreq && count < best) {
			best, bestFreq = count, f
		}
	}
	return best, true
}

// WeeklyStatus is one row of the weekly missing-data report.
type WeeklyStatus struct {
	Site            string
	Mode            int
	ModeKnown       bool
	PercentComplete float64 // meaningful only when Note is empty
	Note            string  // set when the percentage could not be computed
	LastReport      time.Time // zero when no report was found
}

// Reporter assembles weekly missing-data reports from the time-series
// service.
type Reporter struct {
	fetcher wateruse.Fetcher
	logger  *slog.Logger
}

// NewReporter creates a reporter over the given fetcher.
func NewReporter(fetcher wateruse.Fetcher, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{fetcher: fetcher, logger: logger}
}

// Report produces one status row per site for the 7 days ending on weekEnd.
// Service failures for a single site are logged and noted, never fatal to
// the rest of the list.
func (r *Reporter) Report(ctx context.Context, modes []Mode, weekEnd time.Time) []WeeklyStatus {
	statuses := make([]WeeklyStatus, 0, len(modes))
	for i, m := range modes {
		r.logger.InfoContext(ctx, "checking site reports",
			"site", m.Site, "progress", fmt.Sprintf("%d/%d", i+1, len(modes)))
		statuses = append(statuses, r.siteStatus(ctx, m, weekEnd))
	}
	return statuses
}

func (r *Reporter) siteStatus(ctx context.Context, m Mode, weekEnd time.Time) WeeklyStatus {
	status := WeeklyStatus{Site: m.Site, Mode: m.Mode, ModeKnown: m.Known}

	end := wateruse.DateOf(weekEnd).AddDate(0, 0, 1)
	weekStart := end.AddDate(0, 0, -7)

	readings, err := r.fetcher.Readings(ctx, m.Site, reportMeasurement, weekStart, end)
	switch {
	case err == nil:
		status.LastReport = lastTime(readings)
		switch {
		case !m.Known:
			status.Note = "no reporting mode"
		case m.Mode == 0:
			status.Note = "reporting mode is zero"
		default:
			// The reading on the period boundary belongs to the prior week.
			weeklyTotal := len(readings) - 1
			expected := m.Mode * 7
			status.PercentComplete = math.Round(float64(weeklyTotal)/float64(expected)*1000) / 10
		}
	case errors.Is(err, wateruse.ErrNoData):
		status.Note = "no data in last week"
		yearStart := end.AddDate(0, 0, -365)
		annual, annualErr := r.fetcher.Readings(ctx, m.Site, reportMeasurement, yearStart, end)
		switch {
		case annualErr == nil:
			status.LastReport = lastTime(annual)
		case errors.Is(annualErr, wateruse.ErrNoData):
			status.Note = "no data in last year"
		default:
			r.logger.WarnContext(ctx, "annual lookback failed", "site", m.Site, "error", annualErr)
			status.Note = "service error"
		}
	default:
		r.logger.WarnContext(ctx, "weekly extract failed", "site", m.Site, "error", err)
		status.Note = "service error"
	}
	return status
}

func lastTime(readings []wateruse.Reading) time.Time {
	var last time.Time
	for _, rd := range readings {
		if rd.Time.After(last) {
			last = rd.Time
		}
	}
	return last
}

// CompileModes establishes the reporting mode of each site from a trailing
// year of compliance-volume data. Sites with no data keep an unknown mode.
func CompileModes(ctx context.Context, fetcher wateruse.Fetcher, sites []string, today time.Time, logger *slog.Logger) []Mode {
	if logger == nil {
		logger = slog.Default()
	}
	end := wateruse.DateOf(today)
	start := end.AddDate(0, 0, -365)

	modes := make([]Mode, 0, len(sites))
	for i, site := range sites {
		logger.InfoContext(ctx, "compiling reporting mode",
			"site", site, "progress", fmt.Sprintf("%d/%d", i+1, len(sites)))

		readings, err := fetcher.Readings(ctx, site, reportMeasurement, start, end)
		if err != nil {
			if !errors.Is(err, wateruse.ErrNoData) {
				logger.WarnContext(ctx, "mode extract failed", "site", site, "error", err)
			}
			modes = append(modes, Mode{Site: site})
			continue
		}
		counts := wateruse.CountReadingsByDay(readings, start, end)
		m, known := ComputeMode(counts)
		modes = append(modes, Mode{Site: site, Mode: m, Known: known})
	}
	return modes
}

// ReadModes loads a compiled reporting-mode CSV (Site,Mode header row
// included). Modes that fail to parse are kept as unknown.
func ReadModes(path string) ([]Mode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reporting modes: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read reporting modes: %w", err)
	}

	var modes []Mode
	for i, row := range rows {
		if i == 0 || len(row) < 2 || row[0] == "" {
			continue
		}
		m := Mode{Site: row[0]}
		if v, err := strconv.Atoi(row[1]); err == nil {
			m.Mode = v
			m.Known = true
		}
		modes = append(modes, m)
	}
	return modes, nil
}
