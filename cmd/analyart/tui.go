package main

import (
	"fmt"
	"os"

	"github.com/Brownie44l1/analyart/internal/analyzer"
	"github.com/Brownie44l1/analyart/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func tuiCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Pick an image and identify its style interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				dir = wd
			}

			// Console output would corrupt the screen; only a log file is kept.
			l := logger
			if appConfig.Logging.File == "" {
				l = zap.NewNop()
			}

			loader := analyzer.NewLoader()
			loader.Start(ctx, loadAnalyzer(appConfig, l))
			defer closeAnalyzer(loader)

			p := tea.NewProgram(tui.New(ctx, loader, dir), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to browse (default: current directory)")
	return cmd
}
