package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/widgetkit/pkg/actions"
)

func newTapCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tap <action> [payload]",
		Short: "Record a tap as a surface would",
		Long: `Record a tap on an interactive element. Checkbox rows whose action
matches flip in the stored tree, and the event is appended to the group's
pending-action queue for the owning application to drain.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := ""
			if len(args) > 1 {
				payload = args[1]
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			toggled, err := a.host.Tap(cmd.Context(), c.cfg.Group, actions.NewEvent(args[0], payload))
			if err != nil {
				return err
			}
			status := "queued"
			if toggled {
				status = "toggled and queued"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], status)
			return nil
		},
	}
}
