// Command missingdata produces the weekly missing-data report: for each WAP
// site it compares the number of telemetered reports received over the last
// week against the site's usual reporting mode. With -compile it first
// derives the modes from a year of history and writes them out for reuse.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Data-to-Knowledge/WaterUseQA/internal/config"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/exporter"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/hilltop"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/missdata"
	"github.com/Data-to-Knowledge/WaterUseQA/internal/sitelist"
)

func main() {
	wapsPath := flag.String("waps", "", "CSV file listing the WAP sites (required with -compile)")
	modesPath := flag.String("modes", "", "CSV file of previously compiled reporting modes")
	compile := flag.Bool("compile", false, "compile reporting modes from a year of history")
	weekArg := flag.String("week", "", "end of the reporting week, YYYY-MM-DD (default: today)")
	outDir := flag.String("out", "", "output directory (default: from configuration)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger().With(slog.String("run_id", uuid.New().String()))

	weekEnd := time.Now().UTC()
	if *weekArg != "" {
		weekEnd, err = time.Parse("2006-01-02", *weekArg)
		if err != nil {
			logger.Error("Invalid -week date", "error", err)
			os.Exit(2)
		}
	}
	if *outDir == "" {
		*outDir = cfg.Output.Dir
	}

	client := hilltop.NewClient(cfg.Hilltop.BaseURL, cfg.Hilltop.HTS, cfg.Hilltop.Timeout, logger)
	writer := exporter.NewCSVWriter(*outDir, logger)
	ctx := context.Background()

	var modes []missdata.Mode
	switch {
	case *compile:
		if *wapsPath == "" {
			fmt.Fprintln(os.Stderr, "missingdata: -compile requires -waps")
			flag.Usage()
			os.Exit(2)
		}
		sites, err := sitelist.Read(*wapsPath)
		if err != nil {
			logger.Error("Failed to read site list", "path", *wapsPath, "error", err)
			os.Exit(1)
		}
		modes = missdata.CompileModes(ctx, client, sites, weekEnd, logger)
		if err := writer.WriteModes("reporting_modes.csv", modes); err != nil {
			logger.Error("Failed to write reporting modes", "error", err)
			os.Exit(1)
		}
	case *modesPath != "":
		modes, err = missdata.ReadModes(*modesPath)
		if err != nil {
			logger.Error("Failed to read reporting modes", "path", *modesPath, "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "missingdata: either -modes or -compile is required")
		flag.Usage()
		os.Exit(2)
	}

	reporter := missdata.NewReporter(client, logger)
	statuses := reporter.Report(ctx, modes, weekEnd)

	name := "missing_data_" + weekEnd.Format("2006-01-02") + ".csv"
	if err := writer.WriteWeeklyReport(name, statuses); err != nil {
		logger.Error("Failed to write weekly report", "error", err)
		os.Exit(1)
	}

	logger.Info("Weekly missing-data report complete",
		slog.Int("sites", len(statuses)),
		slog.String("week_ending", weekEnd.Format("2006-01-02")))
}
