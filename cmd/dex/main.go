// Command dex browses the Pokémon catalog from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-dex-catalog/config"
	"github.com/goliatone/go-dex-catalog/pkg/di"
	"github.com/goliatone/go-dex-catalog/present"
	"github.com/goliatone/go-dex-catalog/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, a := newRootCmd()
	if err := execute(ctx, root, a); err != nil {
		stop()
		os.Exit(1)
	}
}

// execute runs root and releases whatever setup opened, including when the
// command fails and cobra skips the post-run hooks.
func execute(ctx context.Context, root *cobra.Command, a *app) error {
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

// app is the per-invocation state shared by subcommands.
type app struct {
	configPath string
	verbose    bool

	container *di.Container
	pipeline  *render.Pipeline
	logger    *slog.Logger
	closed    bool
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:          "dex",
		Short:        "Browse the Pokémon catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("DEX_CONFIG"), "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newBrowseCmd(a),
		newShowCmd(a),
		newTypesCmd(a),
		newFavCmd(a),
		newThemeCmd(a),
	)
	return root, a
}

func (a *app) close() error {
	if a.container == nil || a.closed {
		return nil
	}
	a.closed = true
	return a.container.Close()
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(a.logger)

	a.container, err = di.NewContainer(cmd.Context(), cfg, di.WithLogger(a.logger))
	if err != nil {
		return err
	}

	dark, err := a.container.Theme().Dark(cmd.Context())
	if err != nil {
		a.logger.Warn("theme preference unreadable", "error", err)
	}
	term := present.NewTerminal(cmd.OutOrStdout(), present.PaletteFor(dark), cfg.Render.Columns)
	a.pipeline = a.container.Pipeline(term)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
