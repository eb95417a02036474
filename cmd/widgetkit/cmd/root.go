// Package cmd implements the widgetkit CLI commands.
//
// The root command loads configuration and logging once, then dispatches
// to subcommands (render, set, get, tap, drain, watch, serve, version).
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-drift/widgetkit/cmd/widgetkit/internal/cache"
	"github.com/go-drift/widgetkit/cmd/widgetkit/internal/config"
	"github.com/go-drift/widgetkit/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// cli carries state shared by every subcommand of one invocation.
type cli struct {
	v          *viper.Viper
	configPath string
	cacheDir   string
	cfg        *config.Config
	out        io.Writer
}

// NewRootCommand builds the command tree. out receives command output;
// logs go to stderr.
func NewRootCommand(out io.Writer) *cobra.Command {
	c := &cli{v: config.New(), out: out}

	root := &cobra.Command{
		Use:   "widgetkit",
		Short: "widgetkit - declarative home-screen widgets, rendered in Go",
		Long: `widgetkit stores a JSON widget tree per app group, renders it for the
small, medium and large surface families, and relays taps on interactive
elements back to the owning application.

Use "widgetkit <command> --help" for more information about a command.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVar(&c.configPath, "config", "", "config file (default ./"+config.FileName+")")
	f.StringVar(&c.cacheDir, "cache-dir", "", "override cache directory (default ~/.widgetkit)")
	f.String("group", "", "app group identifier")
	f.String("store", "", "store backend: file, sqlite, redis or memory")
	f.String("assets", "", "directory of bundled images")
	f.String("log-level", "", "log level: debug, info, warn or error")
	f.String("log-format", "", "log format: console or json")
	for key, flag := range map[string]string{
		"group":         "group",
		"store.backend": "store",
		"assets":        "assets",
		"log.level":     "log-level",
		"log.format":    "log-format",
	} {
		_ = c.v.BindPFlag(key, f.Lookup(flag))
	}

	root.AddCommand(
		newRenderCommand(c),
		newSetCommand(c),
		newGetCommand(c),
		newTapCommand(c),
		newDrainCommand(c),
		newWatchCommand(c),
		newServeCommand(c),
		newVersionCommand(c),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand(os.Stdout).Execute()
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cache.SetGlobal(Version)
	if c.cacheDir != "" {
		cache.SetCacheDir(c.cacheDir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(c.v, c.configPath, wd)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if err := setupLogging(cmd.ErrOrStderr(), cfg.Log); err != nil {
		return err
	}
	errors.SetHandler(&errors.LogHandler{Verbose: zerolog.GlobalLevel() <= zerolog.DebugLevel})
	return nil
}

// setupLogging configures the global zerolog logger.
func setupLogging(w io.Writer, lc config.LogConfig) error {
	level := zerolog.InfoLevel
	if lc.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
		if err != nil {
			return fmt.Errorf("log level %q: %w", lc.Level, err)
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)

	switch strings.ToLower(lc.Format) {
	case "json":
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	case "", "console":
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	default:
		return fmt.Errorf("log format %q (use console or json)", lc.Format)
	}
	return nil
}

// signalContext is canceled on interrupt for long-running commands.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
