// Package watchcmder provides the watch command, which re-runs
// reconstruction whenever a transcript file changes.
package watchcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/restream/cmd/restream/report"
	"github.com/papercomputeco/restream/pkg/cliui"
	"github.com/papercomputeco/restream/pkg/config"
	"github.com/papercomputeco/restream/pkg/logger"
	"github.com/papercomputeco/restream/pkg/reconstruct"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

type watchCommander struct {
	repair     bool
	format     string
	render     bool
	debounceMS uint

	debug  bool
	logger *slog.Logger
	out    io.Writer

	// onUpdate is called after every printed reconstruction.
	onUpdate func(*reconstruct.Result)
}

const watchLongDesc string = `Watch a transcript file and reconstruct it on every change.

The file is reconstructed once at startup and again whenever it is written,
after writes have settled for the debounce interval. Useful while editing a
captured stream by hand or while another process appends to it.

Examples:
  restream watch stream.sse
  restream watch --debounce-ms 500 --format json stream.sse`

const watchShortDesc string = "Reconstruct a transcript file on every change"

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.configure(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.out = cmd.OutOrStdout()
			cmder.logger = logger.New(
				logger.WithDebug(cmder.debug),
				logger.WithPretty(true),
				logger.WithWriter(cmd.ErrOrStderr()),
			)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx, args[0])
		},
	}

	config.AddBoolFlag(cmd, config.Flags, config.FlagRepair, &cmder.repair)
	config.AddStringFlag(cmd, config.Flags, config.FlagFormat, &cmder.format)
	config.AddUintFlag(cmd, config.Flags, config.FlagDebounce, &cmder.debounceMS)
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Render content as markdown")

	return cmd
}

func (c *watchCommander) configure(cmd *cobra.Command) error {
	var err error
	c.debug, err = cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("could not get debug flag: %w", err)
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagRepair,
		config.FlagFormat,
		config.FlagDebounce,
	})

	c.repair = v.GetBool("parse.repair")
	c.format = v.GetString("parse.format")
	c.debounceMS = v.GetUint("watch.debounce_ms")

	if !config.IsValidFormat(c.format) {
		return fmt.Errorf("invalid format %q (supported: %v)", c.format, config.ValidFormats())
	}

	return nil
}

func (c *watchCommander) run(ctx context.Context, path string) error {
	if c.logger == nil {
		c.logger = logger.Nop()
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file on save keep
	// being followed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	if err := c.refresh(path); err != nil {
		return err
	}

	debounce := time.Duration(c.debounceMS) * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c.logger.Debug("transcript changed", "path", path, "op", event.Op.String())
			timer.Reset(debounce)
		case <-timer.C:
			if err := c.refresh(path); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher error: %w", err)
		}
	}
}

// refresh reconstructs the file and prints it. A file that is briefly
// missing mid-save is reported and waited out rather than ending the watch.
func (c *watchCommander) refresh(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Warn("transcript not found, waiting for it", "path", path)
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	result, err := reconstruct.ReconstructReader(f,
		reconstruct.WithRepair(c.repair),
		reconstruct.WithLogger(c.logger),
	)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if c.format == config.FormatText && cliui.IsTerminal(c.out) {
		fmt.Fprint(c.out, clearScreen)
	}

	printer := &report.Printer{Out: c.out, Format: c.format, Markdown: c.render}
	if err := printer.Print(report.Entry{Source: path, Result: result}); err != nil {
		return err
	}

	if c.format == config.FormatText {
		fmt.Fprintf(c.out, "\n  %s\n", cliui.DimStyle.Render(fmt.Sprintf("watching %s (updated %s)", filepath.Base(path), time.Now().Format(time.TimeOnly))))
	}

	if c.onUpdate != nil {
		c.onUpdate(result)
	}

	return nil
}
