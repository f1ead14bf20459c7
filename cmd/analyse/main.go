// Command analyse runs the water-use quality pipeline for a list of WAP
// sites: it pulls the raw time series from the Hilltop service, cleans and
// aggregates it, and writes per-site summary workbooks and plot series.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Data-to-Knowledge/WaterUseQA/internal/config"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/consents"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/exporter"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/hilltop"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/sitelist"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/wateruse"
)

const dateLayout = "2006-01-02"

func main() {
	wapsPath := flag.String("waps", "", "CSV file listing the WAP sites to analyse (required)")
	fromArg := flag.String("from", "", "start of the extraction window, YYYY-MM-DD (default: full record)")
	toArg := flag.String("to", "", "end of the extraction window, YYYY-MM-DD (default: full record)")
	stats := flag.Bool("stats", true, "write per-site summary workbooks")
	plots := flag.Bool("plots", true, "write per-site plot series")
	outDir := flag.String("out", "", "output directory (default: from configuration)")
	flag.Parse()

	if *wapsPath == "" {
		fmt.Fprintln(os.Stderr, "analyse: -waps is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger().With(slog.String("run_id", uuid.New().String()))

	window, err := parseWindow(*fromArg, *toArg)
	if err != nil {
		logger.Error("Invalid extraction window", "error", err)
		os.Exit(2)
	}

	sites, err := sitelist.Read(*wapsPath)
	if err != nil {
		logger.Error("Failed to read site list", "path", *wapsPath, "error", err)
		os.Exit(1)
	}

	if *outDir == "" {
		*outDir = cfg.Output.Dir
	}

	client := hilltop.NewClient(cfg.Hilltop.BaseURL, cfg.Hilltop.HTS, cfg.Hilltop.Timeout, logger)

	var provider consents.Provider
	if cfg.Warehouse.DSN != "" {
		store, err := consents.Open(cfg.Warehouse.DSN, logger)
		if err != nil {
			logger.Error("Failed to open consent warehouse", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		provider = store
	} else {
		logger.Info("No warehouse DSN configured, plots carry no consent reference lines")
	}

	ctx := context.Background()
	app := &analyser{
		cfg:       cfg,
		logger:    logger,
		extractor: wateruse.NewExtractor(client, logger),
		consents:  provider,
		excel:     exporter.NewExcelWriter(*outDir, logger),
		csv:       exporter.NewCSVWriter(*outDir, logger),
		stats:     *stats,
		plots:     *plots,
	}

	failed := 0
	for _, site := range sites {
		if err := app.analyseSite(ctx, site, window); err != nil {
			logger.Error("Site analysis failed", "site", site, "error", err)
			failed++
		}
	}

	logger.Info("Analysis run complete",
		slog.Int("sites", len(sites)),
		slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

type analyser struct {
	cfg       *config.Config
	logger    *slog.Logger
	extractor *wateruse.Extractor
	consents  consents.Provider
	excel     *exporter.ExcelWriter
	csv       *exporter.CSVWriter
	stats     bool
	plots     bool
}

func (a *analyser) analyseSite(ctx context.Context, site string, window wateruse.Window) error {
	logger := a.logger.With(slog.String("site", site))

	list, err := a.extractor.MeasurementList(ctx, site, window)
	if errors.Is(err, wateruse.ErrSiteNotFound) {
		logger.Warn("Site not in service, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("measurement list: %w", err)
	}

	readings, err := a.extractor.Extract(ctx, site, list)
	if err != nil {
		return fmt.Errorf("extract readings: %w", err)
	}

	conditions, err := a.siteConditions(ctx, site)
	if err != nil {
		return err
	}

	pcfg := wateruse.PipelineConfig{
		RollingWindow:          a.cfg.Pipeline.RollingWindow,
		MinRollingObservations: a.cfg.Pipeline.MinRollingObservations,
	}
	if conditions != nil && conditions.ReturnPeriodDays > 0 {
		pcfg.RollingWindow = conditions.ReturnPeriodDays
	}

	res, err := wateruse.NewPipeline(pcfg, logger).Run(ctx, readings)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	slug := sitelist.FileSlug(site)
	if a.stats {
		name := slug + "_summary.xlsx"
		if err := a.excel.WriteSiteSummary(name, list, res.Negatives, res.Monthly); err != nil {
			return fmt.Errorf("write summary workbook: %w", err)
		}
	}
	if a.plots {
		name := slug + "_plot.csv"
		if err := a.csv.WritePlotSeries(name, res.PlotDaily, plotRefs(conditions)); err != nil {
			return fmt.Errorf("write plot series: %w", err)
		}
	}
	return nil
}

func (a *analyser) siteConditions(ctx context.Context, site string) (*consents.Conditions, error) {
	if a.consents == nil {
		return nil, nil
	}
	conditions, err := a.consents.Conditions(ctx, consents.SiteID(site))
	if err != nil {
		return nil, fmt.Errorf("look up consent conditions: %w", err)
	}
	return conditions, nil
}

// plotRefs converts consent conditions into the plot's reference lines. The
// multi-day volume is spread over the return period so it compares against
// the daily series.
func plotRefs(c *consents.Conditions) *exporter.PlotRefs {
	if c == nil {
		return nil
	}
	refs := &exporter.PlotRefs{
		MaxRateLPS:       c.MaxRateLPS,
		MaxDailyVolumeM3: c.MaxDailyVolumeM3,
	}
	if c.ReturnPeriodDays > 0 {
		refs.MultiDayAvgM3 = c.MultiDayVolumeM3 / float64(c.ReturnPeriodDays)
	}
	return refs
}

func parseWindow(from, to string) (wateruse.Window, error) {
	var w wateruse.Window
	var err error
	if from != "" {
		if w.From, err = time.Parse(dateLayout, from); err != nil {
			return w, fmt.Errorf("parse -from: %w", err)
		}
	}
	if to != "" {
		if w.To, err = time.Parse(dateLayout, to); err != nil {
			return w, fmt.Errorf("parse -to: %w", err)
		}
	}
	if !w.From.IsZero() && !w.To.IsZero() && w.To.Before(w.From) {
		return w, fmt.Errorf("-to %s precedes -from %s", to, from)
	}
	return w, nil
}
