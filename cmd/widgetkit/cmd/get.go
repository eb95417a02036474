package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/host"
)

func newGetCommand(c *cli) *cobra.Command {
	var meta bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the group's stored widget tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.host.GetConfig(cmd.Context(), c.cfg.Group)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if meta {
				fmt.Fprintf(out, "group: %s\nnonce: %d\nhash:  %s\n", c.cfg.Group, snap.Nonce, host.Hash(snap.Raw))
				return nil
			}
			if len(snap.Raw) == 0 {
				return errors.New("get", errors.KindStorage, c.cfg.Group, errors.ErrNotFound)
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, snap.Raw, "", "  "); err != nil {
				return errors.New("get", errors.KindParsing, c.cfg.Group, err)
			}
			buf.WriteByte('\n')
			_, err = buf.WriteTo(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&meta, "meta", false, "print nonce and content hash instead of the tree")
	return cmd
}
