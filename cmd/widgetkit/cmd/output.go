package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/widgetkit/pkg/backend/raster"
	"github.com/go-drift/widgetkit/pkg/backend/svg"
	"github.com/go-drift/widgetkit/pkg/backend/term"
	"github.com/go-drift/widgetkit/pkg/surface"
)

// Output formats.
const (
	formatPNG  = "png"
	formatSVG  = "svg"
	formatText = "txt"
)

var contentTypes = map[string]string{
	formatPNG:  "image/png",
	formatSVG:  "image/svg+xml",
	formatText: "text/plain; charset=utf-8",
}

// formatOf picks the output format: an explicit name wins, then the output
// file's extension, then text.
func formatOf(explicit, output string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(explicit, "."))
	if f == "" {
		f = strings.ToLower(strings.TrimPrefix(filepath.Ext(output), "."))
	}
	switch f {
	case "", "text", formatText:
		return formatText, nil
	case formatPNG, formatSVG:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (use png, svg or txt)", f)
}

// frame is a backend plus a way to write what it last drew.
type frame struct {
	backend surface.Backend
	write   func(io.Writer) error
}

type frameOptions struct {
	Scale       float64
	Transparent bool
	// Renderer selects the text color profile; nil is stdout's.
	Renderer *lipgloss.Renderer
	NoBorder bool
}

func newFrame(format string, opts frameOptions) frame {
	switch format {
	case formatPNG:
		b := &raster.Backend{Scale: opts.Scale, Transparent: opts.Transparent}
		return frame{backend: b, write: b.WritePNG}
	case formatSVG:
		b := &svg.Backend{Transparent: opts.Transparent}
		return frame{backend: b, write: func(w io.Writer) error {
			_, err := w.Write(b.Document())
			return err
		}}
	default:
		b := &term.Backend{Options: term.Options{Renderer: opts.Renderer, NoBorder: opts.NoBorder}}
		return frame{backend: b, write: func(w io.Writer) error {
			_, err := io.WriteString(w, b.Text()+"\n")
			return err
		}}
	}
}
