package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reviewdesk/config"
	"reviewdesk/history"
	"reviewdesk/record"
	"reviewdesk/review"
	"reviewdesk/seed"
)

var version = "dev"

var (
	configPath string
	addr       string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "reviewdesk",
	Short:         "Record review API with optimistic concurrency control",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the records API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.Server.Addr = addr
		}
		logger := newLogger(cfg.Log, verbose, os.Stderr)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Inspect seed datasets",
}

var seedCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a seed dataset (the embedded one when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		records, err := seed.Load(path)
		if err != nil {
			return err
		}
		if _, err := record.NewStore(records); err != nil {
			return err
		}
		counts := record.CountStatuses(records)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d records\n", len(records))
		for _, s := range record.Statuses {
			fmt.Fprintf(out, "  %-15s %d\n", s, counts[s])
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file (overrides REVIEWDESK_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	seedCmd.AddCommand(seedCheckCmd)
	rootCmd.AddCommand(serveCmd, seedCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	records, err := seed.Load(cfg.Records.SeedPath)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	store, err := record.NewStore(records)
	if err != nil {
		return fmt.Errorf("build record store: %w", err)
	}

	svc := review.NewService(store, history.NewLog(), logger).
		WithRequiredVersion(cfg.Records.RequireVersion)
	if !cfg.Records.RequireVersion {
		logger.Warn("writes without a version are accepted; conflict detection is bypassed for them")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      NewServer(svc, logger).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("records api listening", "addr", cfg.Server.Addr, "records", store.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(cfg config.LogConfig, verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
