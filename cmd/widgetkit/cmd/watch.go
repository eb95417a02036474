package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/backend/term"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/host"
	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/store"
	"github.com/go-drift/widgetkit/pkg/surface"
)

// clearScreen homes the cursor and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

func newWatchCommand(c *cli) *cobra.Command {
	var (
		family string
		dark   bool
		drain  bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Preview the group in the terminal, redrawing on change",
		Long: `Render the group as text and redraw whenever the stored tree or its
nonce changes. File and redis stores push changes; other backends are
polled on the updater schedule.

With --drain, pending actions are drained on the same schedule and logged,
standing in for the owning application.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fam, ok := element.ParseFamily(family)
			if !ok {
				return fmt.Errorf("unknown family %q (use small, medium or large)", family)
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			s := surface.New(a.store, c.cfg.Group, screen(out, term.Options{}), surface.Options{
				Family: fam,
				Dark:   dark,
				Images: a.resolver(),
			})
			defer surface.Attach(a.host, s)()
			if _, err := s.Refresh(ctx, true); err != nil {
				return err
			}

			sub := a.host.Dispatcher().Subscribe(logEvent(c.cfg.Group))
			defer sub.Cancel()
			if drain {
				u, err := host.NewUpdater(a.host, c.cfg.Group, c.cfg.Updater.Schedule, nil)
				if err != nil {
					return err
				}
				u.Start()
				defer u.Stop()
			}
			stopFollow, err := follow(ctx, a, c.cfg.Group, c.cfg.Updater.Schedule)
			if err != nil {
				return err
			}
			defer stopFollow()

			<-ctx.Done()
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&family, "family", "small", "size family: small, medium or large")
	f.BoolVar(&dark, "dark", false, "use the dark palette")
	f.BoolVar(&drain, "drain", false, "drain and log pending actions")
	return cmd
}

// screen is a surface backend that redraws the whole terminal per frame.
func screen(w io.Writer, opts term.Options) surface.Backend {
	b := &term.Backend{Options: opts}
	return surface.BackendFunc(func(plan *layout.Plan) error {
		if err := b.Draw(plan); err != nil {
			return err
		}
		_, err := io.WriteString(w, clearScreen+b.Text()+"\n")
		return err
	})
}

func logEvent(group string) func(actions.Event) {
	return func(ev actions.Event) {
		log.Info().Str("group", group).Str("action", ev.Action).Str("payload", ev.Payload).
			Stringer("source", ev.Source).Msg("action")
	}
}

// follow asks the host to reload group whenever another process changes
// it. Stores that can push changes are watched; the rest are polled on
// schedule. The returned function stops polling.
func follow(ctx context.Context, a *app, group, schedule string) (func(), error) {
	if n, ok := a.store.(store.Notifier); ok {
		want := store.SanitizeGroup(group)
		err := n.Watch(ctx, func(changed string) {
			if changed == want {
				a.host.Reload(ctx, group)
			}
		})
		if err != nil {
			return nil, err
		}
		return func() {}, nil
	}

	if schedule == "" {
		schedule = host.DefaultSchedule
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { a.host.Reload(ctx, group) }); err != nil {
		return nil, fmt.Errorf("poll schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Debug().Str("group", group).Str("schedule", schedule).Msg("polling for changes")
	return func() { <-c.Stop().Done() }, nil
}
