package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/widgetkit/pkg/actions"
)

// eventJSON is the wire shape of an event in CLI and websocket output.
type eventJSON struct {
	ID      string `json:"id,omitempty"`
	Action  string `json:"action"`
	Payload string `json:"payload,omitempty"`
	Source  string `json:"source,omitempty"`
	At      int64  `json:"at,omitempty"`
}

func toEventJSON(ev actions.Event) eventJSON {
	out := eventJSON{ID: ev.ID, Action: ev.Action, Payload: ev.Payload, Source: ev.Source.String()}
	if !ev.At.IsZero() {
		out.At = ev.At.UnixMilli()
	}
	return out
}

func newDrainCommand(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Empty the group's pending-action queue and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.host.Drain(cmd.Context(), c.cfg.Group)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				list := make([]eventJSON, len(events))
				for i, ev := range events {
					list[i] = toEventJSON(ev)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			for _, ev := range events {
				fmt.Fprintf(out, "%s\t%s\n", ev.Action, ev.Payload)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print events as JSON")
	return cmd
}
