package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-drift/widgetkit/pkg/element"
)

func newSetCommand(c *cli) *cobra.Command {
	var skipReload bool
	cmd := &cobra.Command{
		Use:   "set <file|->",
		Short: "Store a widget tree for the group",
		Long: `Store a widget tree for the configured group. The file may be YAML or
JSON; "-" reads standard input.

Null values are stripped and remote images are fetched into the local cache
before the config is written. Writing an unchanged config is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			raw, err := element.DecodeYAML(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			changed, err := a.host.SetConfig(cmd.Context(), c.cfg.Group, raw, skipReload)
			if err != nil {
				return err
			}
			status := "unchanged"
			if changed {
				status = "written"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", c.cfg.Group, status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipReload, "skip-reload", false, "do not ask surfaces to reload")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
