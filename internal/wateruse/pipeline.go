package wateruse

import (
	"context"
	"log/slog"
	"time"
)

// PipelineConfig parameterises one QA run. The same pipeline serves the
// plain, consent-aware and list variants; the differences collapse into
// configuration.
type PipelineConfig struct {
	// RollingWindow is the trailing rolling-mean window for the plot series,
	// in days. When a site carries consent conditions the caller sets this to
	// the consent's return period. Zero disables the rolling mean.
	RollingWindow int
	// MinRollingObservations is the minimum number of non-missing days
	// required in a rolling window. Zero requires a full window.
	MinRollingObservations int
}

// Result holds every table derived from one extraction. All slices are
// terminal artifacts: the pipeline never mutates them after Run returns.
type Result struct {
	// Volumes is the normalised pre-filter series, negatives and unresolved
	// records included.
	Volumes []VolumeRecord
	// Negatives summarises the removed negative readings by month.
	Negatives []NegativeMonth
	// Cleaned is the filtered, spike-flagged series.
	Cleaned []VolumeRecord
	// SpikeParams are the detection parameters estimated from Cleaned.
	SpikeParams SpikeParams
	// Daily and Monthly are the aggregate statistics; Monthly carries the
	// merged extraction min/mean/max.
	Daily   []DailyStat
	Monthly []MonthlyStat
	// PlotDaily is the gap-filled daily series for plotting.
	PlotDaily []DailyPoint
}

// Pipeline runs the full cleaning and aggregation sequence over a raw
// extraction. It is a pure single-pass batch transform with no state between
// runs; identical input yields identical output.
type Pipeline struct {
	cfg    PipelineConfig
	logger *slog.Logger
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run derives every QA table from the raw readings. An empty extraction
// yields an empty result, not an error.
func (p *Pipeline) Run(ctx context.Context, readings []Reading) (*Result, error) {
	start := time.Now()
	p.logger.InfoContext(ctx, "starting water-use pipeline",
		"readings", len(readings),
		"rolling_window", p.cfg.RollingWindow,
	)

	res := &Result{}
	if len(readings) == 0 {
		p.logger.InfoContext(ctx, "empty extraction, nothing to derive")
		return res, nil
	}

	res.Volumes = NormalizeVolumes(readings)
	res.Negatives = SummarizeNegatives(res.Volumes)
	filtered := FilterNegatives(res.Volumes)

	res.SpikeParams = ComputeSpikeParams(filtered)
	if res.SpikeParams.Degenerate() {
		p.logger.DebugContext(ctx, "spike sample degenerate, flags suppressed",
			"n", res.SpikeParams.N, "sd", res.SpikeParams.SD)
	}
	res.Cleaned = DetectSpikes(filtered, res.SpikeParams)

	res.Daily = DailyStats(res.Cleaned)
	monthly := MonthlyStats(res.Daily)
	extraction := ExtractionStats(res.Cleaned)
	res.Monthly = MergeExtraction(monthly, extraction)

	res.PlotDaily = PlotSeries(res.Cleaned, PlotSeriesOptions{
		RollingWindow:   p.cfg.RollingWindow,
		MinObservations: p.cfg.MinRollingObservations,
	})

	negCount := 0
	for _, m := range res.Negatives {
		negCount += m.Count
	}
	p.logger.InfoContext(ctx, "water-use pipeline completed",
		"duration", time.Since(start),
		"volumes", len(res.Volumes),
		"negatives_removed", negCount,
		"months", len(res.Monthly),
		"plot_days", len(res.PlotDaily),
	)
	return res, nil
}
