package wateruse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// ErrNoData is returned by a Fetcher when the service holds no data for the
// requested site, measurement and date range. It is recoverable: the
// extractor skips the sub-range and continues. Transport failures must be
// returned as distinct errors and are fatal to the extraction.
var ErrNoData = errors.New("no data in range")

// ErrSiteNotFound is returned by a Fetcher when a site has no water-use
// measurements at all.
var ErrSiteNotFound = errors.New("site not found")

// defaultSeriesStart substitutes for measurement list entries with no
// recorded start date.
var defaultSeriesStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// MeasurementInfo describes one measurement series available for a site.
type MeasurementInfo struct {
	Name string    `json:"name"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Window bounds an extraction to an inclusive date range. Zero fields leave
// the corresponding bound open.
type Window struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether both bounds are open.
func (w Window) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Fetcher retrieves raw water-use data from the time-series service.
// Implementations return ErrNoData for empty ranges and ErrSiteNotFound for
// unknown sites; any other error is treated as a transport failure.
type Fetcher interface {
	MeasurementList(ctx context.Context, site string) ([]MeasurementInfo, error)
	Readings(ctx context.Context, site, measurement string, from, to time.Time) ([]Reading, error)
}

// Extractor pulls a site's water-use series measurement by measurement,
// walking a date cursor forward so consecutive series never overlap.
type Extractor struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewExtractor creates an extractor over the given fetcher.
func NewExtractor(fetcher Fetcher, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{fetcher: fetcher, logger: logger}
}

// MeasurementList fetches the site's water-use measurements, prepared for
// extraction: filtered to the water-use kinds, missing start dates defaulted,
// ordered by start date, and clamped to the window. Measurements entirely
// outside the window are dropped.
func (e *Extractor) MeasurementList(ctx context.Context, site string, window Window) ([]MeasurementInfo, error) {
	raw, err := e.fetcher.MeasurementList(ctx, site)
	if err != nil {
		return nil, fmt.Errorf("measurement list for %s: %w", site, err)
	}

	wanted := make(map[string]bool, len(WaterUseMeasurements))
	for _, name := range WaterUseMeasurements {
		wanted[name] = true
	}

	var list []MeasurementInfo
	for _, m := range raw {
		if !wanted[m.Name] {
			continue
		}
		if m.From.IsZero() {
			m.From = defaultSeriesStart
		}
		if !window.From.IsZero() {
			if !m.To.After(window.From) {
				continue
			}
			if m.From.Before(window.From) {
				m.From = window.From
			}
		}
		if !window.To.IsZero() {
			if !m.From.Before(window.To) {
				continue
			}
			if m.To.After(window.To) {
				m.To = window.To
			}
		}
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].From.Before(list[j].From)
	})
	return list, nil
}

// Extract pulls readings for every measurement in the prepared list and
// combines them into a single sequence.
//
// The cursor starts at the first measurement's start date. Each measurement
// is extracted from the cursor to its own end date, after which the cursor
// advances one day past that end so the next series cannot overlap. A
// sub-range with no data is logged and skipped with the cursor still
// advanced, leaving later measurement kinds unaffected.
func (e *Extractor) Extract(ctx context.Context, site string, list []MeasurementInfo) ([]Reading, error) {
	if len(list) == 0 {
		return nil, nil
	}

	var readings []Reading
	cursor := DateOf(list[0].From)
	for _, m := range list {
		to := DateOf(m.To)
		if cursor.After(to) {
			e.logger.DebugContext(ctx, "skipping measurement, window already covered",
				"site", site, "measurement", m.Name)
			continue
		}

		batch, err := e.fetcher.Readings(ctx, site, m.Name, cursor, to)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				e.logger.InfoContext(ctx, "no data extracted for measurement",
					"site", site, "measurement", m.Name,
					"from", cursor.Format("2006-01-02"), "to", to.Format("2006-01-02"))
				cursor = to.AddDate(0, 0, 1)
				continue
			}
			return nil, fmt.Errorf("extract %s %q: %w", site, m.Name, err)
		}

		kind := ParseMeasurementKind(m.Name)
		for _, r := range batch {
			r.Measurement = m.Name
			r.Kind = kind
			readings = append(readings, r)
		}
		cursor = to.AddDate(0, 0, 1)
	}
	return readings, nil
}
