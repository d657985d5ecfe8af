// Package parsecmder provides the parse command, which reconstructs SSE
// transcripts from files or stdin.
package parsecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/restream/cmd/restream/report"
	"github.com/papercomputeco/restream/cmd/restream/storeopen"
	"github.com/papercomputeco/restream/pkg/cliui"
	"github.com/papercomputeco/restream/pkg/config"
	"github.com/papercomputeco/restream/pkg/logger"
	"github.com/papercomputeco/restream/pkg/reconstruct"
	"github.com/papercomputeco/restream/pkg/storage"
)

// stdinName is the argument, and the reported source, for standard input.
const stdinName = "-"

type parseCommander struct {
	repair      bool
	format      string
	render      bool
	save        bool
	sqlitePath  string
	postgresDSN string

	configDir string
	debug     bool
	logger    *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

const parseLongDesc string = `Reconstruct the full message from raw LLM server-sent events transcripts.

Reads each file argument, or stdin when no file (or "-") is given, and prints
the reconstructed content, stream metadata and any line-addressed parse
errors. Several files are reconstructed concurrently and printed in argument
order.

Parse errors are reported, never fatal: the exit status is non-zero only when
an input cannot be read or a result cannot be saved.

Examples:
  restream parse stream.sse
  curl -N ... | restream parse
  restream parse --format json a.sse b.sse
  restream parse --save --sqlite ./transcripts.db stream.sse`

const parseShortDesc string = "Reconstruct SSE transcripts"

func NewParseCmd() *cobra.Command {
	cmder := &parseCommander{}

	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: parseShortDesc,
		Long:  parseLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.configure(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.stdin = cmd.InOrStdin()
			cmder.stdout = cmd.OutOrStdout()
			cmder.stderr = cmd.ErrOrStderr()
			return cmder.run(cmd.Context(), args)
		},
	}

	config.AddBoolFlag(cmd, config.Flags, config.FlagRepair, &cmder.repair)
	config.AddStringFlag(cmd, config.Flags, config.FlagFormat, &cmder.format)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Render content as markdown")
	cmd.Flags().BoolVar(&cmder.save, "save", false, "Store each transcript and its reconstruction")

	return cmd
}

// configure resolves flag values through the config precedence chain.
func (c *parseCommander) configure(cmd *cobra.Command) error {
	var err error
	c.debug, err = cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("could not get debug flag: %w", err)
	}

	c.configDir, _ = cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagRepair,
		config.FlagFormat,
		config.FlagSQLite,
		config.FlagPostgres,
	})

	c.repair = v.GetBool("parse.repair")
	c.format = v.GetString("parse.format")
	c.sqlitePath = v.GetString("storage.sqlite_path")
	c.postgresDSN = v.GetString("storage.postgres_dsn")

	if !config.IsValidFormat(c.format) {
		return fmt.Errorf("invalid format %q (supported: %v)", c.format, config.ValidFormats())
	}

	return nil
}

// input is one argument's outcome. Text is only kept when saving.
type input struct {
	source string
	text   string
	result *reconstruct.Result
	err    error
}

func (c *parseCommander) run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(c.stderr),
	)

	if len(args) == 0 {
		args = []string{stdinName}
	}

	inputs := c.reconstructAll(args)

	printer := &report.Printer{Out: c.stdout, Format: c.format, Markdown: c.render}

	var (
		entries []report.Entry
		errs    []error
	)
	for _, in := range inputs {
		if in.err != nil {
			errs = append(errs, in.err)
			fmt.Fprintf(c.stderr, "  %s %s\n", cliui.FailMark, in.err)
			continue
		}
		entries = append(entries, report.Entry{Source: in.source, Result: in.result})
	}

	if len(entries) > 0 {
		if err := printer.Print(entries...); err != nil {
			return err
		}
	}

	if c.save {
		if err := c.saveAll(ctx, inputs); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// reconstructAll reconstructs every argument concurrently. Results keep the
// argument order.
func (c *parseCommander) reconstructAll(args []string) []input {
	opts := []reconstruct.Option{
		reconstruct.WithRepair(c.repair),
		reconstruct.WithLogger(c.logger),
	}

	inputs := make([]input, len(args))

	var (
		wg      sync.WaitGroup
		stdinMu sync.Mutex
	)
	for i, arg := range args {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if arg == stdinName {
				// stdin can only be drained once; later "-" arguments see it empty.
				stdinMu.Lock()
				defer stdinMu.Unlock()
			}
			inputs[i] = c.reconstructOne(arg, opts)
		}()
	}
	wg.Wait()

	return inputs
}

func (c *parseCommander) reconstructOne(arg string, opts []reconstruct.Option) input {
	in := input{source: arg}
	if arg == stdinName {
		in.source = "stdin"
	}

	var r io.Reader
	if arg == stdinName {
		r = c.stdin
	} else {
		f, err := os.Open(arg)
		if err != nil {
			in.err = fmt.Errorf("reading %s: %w", arg, err)
			return in
		}
		defer f.Close()
		r = f
	}

	if c.save {
		data, err := io.ReadAll(r)
		if err != nil {
			in.err = fmt.Errorf("reading %s: %w", in.source, err)
			return in
		}
		in.text = string(data)
		in.result = reconstruct.Reconstruct(in.text, opts...)
		return in
	}

	result, err := reconstruct.ReconstructReader(r, opts...)
	if err != nil {
		in.err = fmt.Errorf("%s: %w", in.source, err)
		return in
	}
	in.result = result
	return in
}

// saveAll stores every successfully read, non-empty input.
func (c *parseCommander) saveAll(ctx context.Context, inputs []input) error {
	driver, err := storeopen.Open(ctx, storeopen.Options{
		PostgresDSN: c.postgresDSN,
		SQLitePath:  c.sqlitePath,
		ConfigDir:   c.configDir,
		Persistent:  true,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}
	defer driver.Close()

	for _, in := range inputs {
		if in.err != nil || in.text == "" {
			continue
		}

		t := storage.NewTranscript(in.source, in.text, in.result)
		isNew, err := driver.Put(ctx, t)
		if err != nil {
			return fmt.Errorf("saving %s: %w", in.source, err)
		}

		status := "saved"
		if !isNew {
			status = "already stored"
		}
		fmt.Fprintf(c.stderr, "  %s %s %s %s\n", cliui.SuccessMark, status, cliui.DimStyle.Render(t.Hash), in.source)
	}

	return nil
}
