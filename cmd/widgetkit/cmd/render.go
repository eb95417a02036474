package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/surface"
	"github.com/go-drift/widgetkit/pkg/theme"
)

type renderOptions struct {
	family      string
	format      string
	output      string
	file        string
	dark        bool
	scale       float64
	transparent bool
	noBorder    bool
	maxChildren int
}

func newRenderCommand(c *cli) *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the group's widget",
		Long: `Render the stored widget tree of the configured group, or an authoring
file given with --file, for one size family.

Text output goes to the terminal; PNG and SVG are chosen with --format or
from the extension of --output.

Examples:
  widgetkit render --family medium
  widgetkit render --family large --dark -o large.png
  widgetkit render --file tree.yaml --format svg -o tree.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runRender(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.family, "family", "small", "size family: small, medium or large")
	f.StringVar(&o.format, "format", "", "output format: txt, png or svg")
	f.StringVarP(&o.output, "output", "o", "", "write to file instead of stdout")
	f.StringVar(&o.file, "file", "", "render an authoring file (YAML or JSON) instead of the store")
	f.BoolVar(&o.dark, "dark", false, "use the dark palette")
	f.Float64Var(&o.scale, "scale", 2, "device pixel ratio for png")
	f.BoolVar(&o.transparent, "transparent", false, "leave the surface background unpainted")
	f.BoolVar(&o.noBorder, "no-border", false, "drop the frame around text output")
	f.IntVar(&o.maxChildren, "max-children", 0, "cap on rendered children per container")
	return cmd
}

func (c *cli) runRender(cmd *cobra.Command, o renderOptions) error {
	family, ok := element.ParseFamily(o.family)
	if !ok {
		return fmt.Errorf("unknown family %q (use small, medium or large)", o.family)
	}
	format, err := formatOf(o.format, o.output)
	if err != nil {
		return err
	}
	fr := newFrame(format, frameOptions{Scale: o.scale, Transparent: o.transparent, NoBorder: o.noBorder})

	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()

	if o.file != "" {
		data, err := os.ReadFile(o.file)
		if err != nil {
			return err
		}
		raw, err := element.DecodeYAML(data)
		if err != nil {
			return fmt.Errorf("%s: %w", o.file, err)
		}
		plan := layout.ResolveRaw(raw, layout.Context{
			Family:      family,
			Theme:       theme.For(o.dark),
			MaxChildren: o.maxChildren,
			Images:      a.resolver(),
			Now:         time.Now(),
		})
		if err := fr.backend.Draw(plan); err != nil {
			return err
		}
	} else {
		s := surface.New(a.store, c.cfg.Group, fr.backend, surface.Options{
			Family:      family,
			Dark:        o.dark,
			MaxChildren: o.maxChildren,
			Images:      a.resolver(),
		})
		if _, err := s.Refresh(cmd.Context(), true); err != nil {
			return err
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := fr.write(w); err != nil {
		return err
	}
	if o.output != "" {
		log.Info().Str("family", family.String()).Str("format", format).Str("path", o.output).Msg("rendered")
	}
	return nil
}
