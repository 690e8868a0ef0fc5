package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Brownie44l1/analyart/internal/config"
	"github.com/Brownie44l1/analyart/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	version   = "dev"
	appConfig *config.Config
	logger    = zap.NewNop()

	rootCmd = &cobra.Command{
		Use:   "analyart",
		Short: "Identify the art movement of an image",
		Long: `AnalyArt loads a pre-trained image classifier and ranks how strongly an
image matches each art movement it knows.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./analyart.yaml or $HOME/.config/analyart/analyart.yaml)")
	rootCmd.PersistentFlags().String("model", "", "path to model.json (default: model/model.json)")
	rootCmd.PersistentFlags().String("onnxruntime", "", "path to the onnxruntime shared library")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json)")

	_ = viper.BindPFlag("model.path", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("model.library", rootCmd.PersistentFlags().Lookup("onnxruntime"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(identifyCmd())
	rootCmd.AddCommand(labelsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	l, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		l.Debug("config loaded", zap.String("file", used))
	}

	appConfig, logger = cfg, l
	return nil
}
