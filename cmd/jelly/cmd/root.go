// Package cmd implements the jelly command line tool.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/jelly/internal/config"
	"github.com/aleksaelezovic/jelly/internal/logging"
	"github.com/aleksaelezovic/jelly/internal/metrics"
	"github.com/aleksaelezovic/jelly/internal/storage"
	"github.com/aleksaelezovic/jelly/pkg/store"
)

// app is the state shared by all subcommands
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *store.FrameStore
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jelly",
	Short: "Jelly - binary RDF streams",
	Long: `jelly encodes RDF statements into Jelly streams, stores them as
frames, and decodes, inspects or transcodes stored streams.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown(appFrom(cmd))
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory of the frame store (overrides the config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides the config)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, log: log}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = metrics.New(a.registry)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	s, err := storage.NewBadgerStorage(cfg.DataDir, log)
	if err != nil {
		return err
	}
	compression, _ := store.ParseCompression(cfg.Frames.Compression)
	a.store, err = store.NewFrameStore(s, store.Options{
		Compression: compression,
		Logger:      log,
		Metrics:     a.metrics,
	})
	if err != nil {
		_ = s.Close()
		return err
	}

	log.Debug("frame store opened", zap.String("data_dir", cfg.DataDir), zap.String("compression", string(compression)))
	cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
	return nil
}

func teardown(a *app) error {
	if a.registry != nil {
		logMetrics(a.log, a.registry)
	}
	err := a.store.Close()
	_ = a.log.Sync()
	return err
}

// logMetrics writes the collected counters to the log when the command ends.
func logMetrics(log *zap.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		log.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, l := range m.GetLabel() {
				fields = append(fields, zap.String(l.GetName(), l.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
			log.Info("metric", fields...)
		}
	}
}
