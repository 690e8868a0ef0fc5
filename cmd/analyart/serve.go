package main

import (
	"context"
	"fmt"

	"github.com/Brownie44l1/analyart/internal/analyzer"
	"github.com/Brownie44l1/analyart/internal/handlers"
	"github.com/Brownie44l1/analyart/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload page and prediction API",
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "listen port (default 8080, or $PORT)")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appConfig

	loader := analyzer.NewLoader()
	loader.Start(ctx, loadAnalyzer(cfg, logger))
	defer closeAnalyzer(loader)

	handler := handlers.NewHandler(loader, cfg.Server.MaxUploadMB, logger)
	srv := server.New(cfg.Server, handler, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	logger.Info("endpoints",
		zap.String("page", "GET / - upload page"),
		zap.String("health", "GET /health - readiness"),
		zap.String("predict", "POST /predict - raw tensor"),
		zap.String("predict_image", "POST /predict/image - multipart 'image' upload"))

	loaded := loader.Done()
	for {
		select {
		case err := <-errCh:
			return err
		case <-loaded:
			loaded = nil
			if _, err := loader.Analyzer(); err != nil {
				// The page and /health keep reporting the failure; nothing is retried.
				logger.Error("model failed to load", zap.Error(err))
				continue
			}
			logger.Info("AnalyArt engine ready", zap.Strings("classes", labelsOf(loader)))
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errCh
		}
	}
}

func labelsOf(loader *analyzer.Loader) []string {
	a, err := loader.Analyzer()
	if err != nil {
		return nil
	}
	return a.Labels()
}
