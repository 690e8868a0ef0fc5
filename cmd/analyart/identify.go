package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Brownie44l1/analyart/internal/render"
	"github.com/spf13/cobra"
)

func identifyCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Identify the art movement of one image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			a, err := loadAnalyzer(appConfig, logger)(cmd.Context())
			if err != nil {
				return fmt.Errorf("system error: model could not be loaded: %w", err)
			}
			defer a.Close()

			res, err := a.IdentifyBytes(cmd.Context(), data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprint(out, render.Terminal(res, 40))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
