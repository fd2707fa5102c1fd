package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agrobio/biobot/internal/recommender"
	"github.com/agrobio/biobot/internal/server"
)

var (
	flagServeAddr     string
	flagServeIndexDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	Long: `Load the index and serve:

  GET  /           liveness message
  GET  /healthz    status and record count
  POST /recommend  JSON {"query": "...", "k": 3}
  POST /whatsapp   Twilio WhatsApp webhook (TwiML reply)
  GET  /ui         HTML form`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config or PORT)")
	serveCmd.Flags().StringVar(&flagServeIndexDir, "index-dir", "", "Index directory (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	overrideString(&addr, flagServeAddr)
	indexDir := cfg.IndexDir
	overrideString(&indexDir, flagServeIndexDir)

	providers, err := providerCache(cfg)
	if err != nil {
		return err
	}
	rec, err := recommender.Open(indexDir, providers.Get, recommender.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("cannot load index %s: %w", indexDir, err)
	}
	logger.Info("index loaded", "dir", indexDir, "records", rec.Len(), "model", rec.Config().Model)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(rec, logger, server.Options{
		CORSOrigin:     cfg.Server.CORSOrigin,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		RequestTimeout: cfg.Server.RequestTimeout,
		ServiceName:    cfg.Server.ServiceName,
	})
	return srv.ListenAndServe(ctx, addr)
}
