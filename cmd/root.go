package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sayless/internal/collector"
	"sayless/pkg/config"
	"sayless/pkg/httputil"
)

var (
	verbose   bool
	overrides config.Overrides
	settings  config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "sayless",
	Short: "Collect yesterday's YouTube uploads into Google Sheets",
	Long: `Sayless lists the videos each configured YouTube channel published yesterday,
marks which of them are Shorts, and writes them to a new tab of a Google
Sheets spreadsheet named after that date.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		setupLogger(slog.LevelInfo)

		s, err := config.LoadSettings(overrides)
		if err != nil {
			return &phaseError{phase: phaseConfig, err: err}
		}
		settings = s

		setupLogger(s.LogLevel)
		return nil
	}
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logFailure(err)
		return err
	}
	return nil
}

func setupLogger(level slog.Level) {
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("run_id", runID))
}

var runID = uuid.NewString()

type phase string

const (
	phaseConfig      phase = "config"
	phaseCredentials phase = "credentials"
	phaseCollect     phase = "collect"
	phaseExport      phase = "export"
)

type phaseError struct {
	phase phase
	err   error
}

func (e *phaseError) Error() string {
	return string(e.phase) + ": " + e.err.Error()
}

func (e *phaseError) Unwrap() error {
	return e.err
}

func logFailure(err error) {
	attrs := []any{"error", err}

	var pe *phaseError
	if errors.As(err, &pe) {
		attrs = append(attrs, "phase", pe.phase)
	}
	var ce *collector.ChannelError
	if errors.As(err, &ce) {
		attrs = append(attrs, "channel", ce.Handle)
	}
	if httputil.IsTransient(err) {
		attrs = append(attrs, "transient", true)
	}

	slog.Error("Run failed", attrs...)
}

func addDocumentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&overrides.ConfigPath, "configPath", "",
		"Config document: local path or gs:// URL (default "+config.DefaultConfigPath+")")
	cmd.Flags().StringVar(&overrides.ServiceAccountPath, "serviceAccountPath", "",
		"Service account key: local path, gs:// URL or Secret Manager version (default "+config.DefaultServiceAccountPath+")")
}
