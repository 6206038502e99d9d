package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cakeday/config"
	"github.com/kilianp07/cakeday/core/cakeday"
	"github.com/kilianp07/cakeday/core/calendar"
	coremetrics "github.com/kilianp07/cakeday/core/metrics"
	"github.com/kilianp07/cakeday/core/pipeline"
	"github.com/kilianp07/cakeday/infra/logger"
	inframetrics "github.com/kilianp07/cakeday/infra/metrics"
	"github.com/kilianp07/cakeday/infra/source"
	"github.com/kilianp07/cakeday/internal/eventbus"
	"github.com/kilianp07/cakeday/pkg/export"

	_ "github.com/kilianp07/cakeday/infra/spill"
)

var (
	year        int
	metricsFile string
)

var calculateCmd = &cobra.Command{
	Use:   "calculate <input> <output>",
	Short: "Compute cake days from a name,yyyy-mm-dd file and write them as CSV",
	Args:  cobra.ExactArgs(2),
	RunE:  runCalculate,
}

func init() {
	calculateCmd.Flags().IntVarP(&year, "year", "y", 0, "calendar year (default current year)")
	calculateCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	rootCmd.AddCommand(calculateCmd)
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if metricsFile != "" {
		cfg.Metrics.Textfile = metricsFile
	}
	y := year
	if y == 0 {
		y = time.Now().Year()
	}
	return calculate(ctx, cfg, args[0], args[1], y)
}

func calculate(ctx context.Context, cfg *config.Config, input, output string, y int) error {
	logg := logger.NewZerologLogger("calculate", cfg.Logging.Level)

	info, err := source.Validate(input)
	if err != nil {
		return err
	}
	logg.Infof("reading %s (%.2f MB) for %d", info.Path, info.SizeMB(), y)

	cal, err := calendar.New(cfg.Calendar.Holidays)
	if err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	engine := cakeday.NewEngine(cal,
		cakeday.WithMaxRounds(cfg.Engine.MaxRounds),
		cakeday.WithEngineLogger(logg),
	)
	scheduler := cakeday.NewScheduler(engine,
		cakeday.WithCeiling(cfg.Batch.Ceiling),
		cakeday.WithWorkers(cfg.Batch.Workers),
		cakeday.WithSchedulerLogger(logg),
	)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	sinks := coremetrics.NewMultiSink(sink, inframetrics.NewLogSink(logg))
	defer func() {
		if cfg.Metrics.Textfile != "" {
			if err := inframetrics.WriteTextfile(sink, cfg.Metrics.Textfile); err != nil {
				logg.Errorf("write metrics: %v", err)
			}
		}
		if err := sinks.Close(); err != nil {
			logg.Errorf("close metrics: %v", err)
		}
	}()

	bus := eventbus.NewTyped[pipeline.Progress](0)
	done := watchProgress(bus, logg)
	defer func() {
		bus.Close()
		<-done
	}()

	f, err := os.Open(info.Path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	p := pipeline.New(scheduler, cfg.PipelineSettings(),
		pipeline.WithLogger(logg),
		pipeline.WithMetrics(sinks),
		pipeline.WithProgress(bus),
	)
	res, err := p.Run(ctx, source.Records(f), y)
	if err != nil {
		return fmt.Errorf("calculate: %w", err)
	}
	if !res.Converged {
		logg.Warnf("%d rule engine runs did not stabilise; the calendar may contain adjacent cake days", res.NonConvergedRuns)
	}

	if err := export.WriteFile(output, res.Days); err != nil {
		return err
	}

	s := pipeline.Summarize(res.Days)
	logg.Infow("cake calendar written", map[string]any{
		"output":         output,
		"persons":        res.Persons,
		"chunks":         res.Chunks,
		"cake_days":      s.CakeDays,
		"small_cakes":    s.SmallCakes,
		"large_cakes":    s.LargeCakes,
		"mean_attendees": s.MeanAttendees,
		"max_attendees":  s.MaxAttendees,
		"elapsed":        res.Elapsed.String(),
		"peak_heap_mb":   float64(res.PeakHeapBytes) / (1 << 20),
	})
	return nil
}

// watchProgress logs chunk progress until bus is closed.
func watchProgress(bus *eventbus.TypedBus[pipeline.Progress], logg logger.Logger) <-chan struct{} {
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub {
			logg.Debugw("chunk processed", map[string]any{
				"chunk":     ev.Chunk,
				"persons":   ev.Persons,
				"processed": ev.Processed,
				"cake_days": ev.CakeDays,
				"converged": ev.Converged,
			})
		}
	}()
	return done
}
