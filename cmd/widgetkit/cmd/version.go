package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/widgetkit/cmd/widgetkit/internal/cache"
)

func newVersionCommand(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "widgetkit version %s (built %s, image cache %s)\n",
				Version, BuildTime, cache.Version())
			return nil
		},
	}
}
