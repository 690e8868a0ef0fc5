package main

import (
	"context"

	"github.com/Brownie44l1/analyart/internal/analyzer"
	"github.com/Brownie44l1/analyart/internal/config"
	"github.com/Brownie44l1/analyart/internal/labels"
	"github.com/Brownie44l1/analyart/internal/model"
	"go.uber.org/zap"
)

// loadAnalyzer opens the model described by cfg and wraps it with the label
// table and result cache.
func loadAnalyzer(cfg *config.Config, logger *zap.Logger) analyzer.LoadFunc {
	return func(ctx context.Context) (*analyzer.Analyzer, error) {
		table := labels.Table(cfg.Model.Labels)

		logger.Info("loading model", zap.String("path", cfg.Model.Path))
		m, err := model.Load(ctx, model.Options{
			DescriptorPath: cfg.Model.Path,
			LibraryPath:    cfg.Model.Library,
			Labels:         table,
		}, logger)
		if err != nil {
			return nil, err
		}

		desc := m.Descriptor()
		a, err := analyzer.New(m, analyzer.Options{
			Labels:     table,
			Preprocess: desc.Preprocess(),
			CacheSize:  cfg.Cache.Size,
			Logger:     logger,
		})
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		return a, nil
	}
}

func closeAnalyzer(loader *analyzer.Loader) {
	a, err := loader.Analyzer()
	if err != nil {
		return
	}
	if err := a.Close(); err != nil {
		logger.Warn("failed to release model", zap.Error(err))
	}
}
