package main

import (
	"fmt"

	"github.com/Brownie44l1/analyart/internal/labels"
	"github.com/spf13/cobra"
)

func labelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the art movements in model output order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for i, l := range labels.Table(appConfig.Model.Labels) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, l)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "analyart %s\n", version)
		},
	}
}
