// Package historycmder provides the history command for browsing stored
// transcripts.
package historycmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/restream/cmd/restream/report"
	"github.com/papercomputeco/restream/cmd/restream/storeopen"
	"github.com/papercomputeco/restream/pkg/config"
	"github.com/papercomputeco/restream/pkg/logger"
	"github.com/papercomputeco/restream/pkg/storage"
)

// shortHashLen is how much of a hash listings show. Any unique prefix of at
// least minPrefixLen characters selects a transcript.
const (
	shortHashLen = 12
	minPrefixLen = 4
)

type historyCommander struct {
	format      string
	provider    string
	limit       int
	raw         bool
	sqlitePath  string
	postgresDSN string
	configDir   string

	out io.Writer
}

const historyLongDesc string = `Browse transcripts stored by "restream parse --save" or "restream serve".

Without arguments, lists stored transcripts newest first. With a hash (or a
unique prefix of one), prints that transcript's reconstruction.

Examples:
  restream history
  restream history --provider anthropic --limit 5
  restream history 3f2a9c1b
  restream history --raw 3f2a9c1b > stream.sse`

const historyShortDesc string = "Browse stored transcripts"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [hash]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.configure(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.out = cmd.OutOrStdout()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if len(args) == 1 {
				return cmder.show(ctx, args[0])
			}
			return cmder.list(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagFormat, &cmder.format)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	cmd.Flags().StringVarP(&cmder.provider, "provider", "p", "", "Only list transcripts from this provider")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Maximum number of transcripts to list")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the raw transcript instead of its reconstruction")

	return cmd
}

func (c *historyCommander) configure(cmd *cobra.Command) error {
	c.configDir, _ = cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagFormat,
		config.FlagSQLite,
		config.FlagPostgres,
	})

	c.format = v.GetString("parse.format")
	c.sqlitePath = v.GetString("storage.sqlite_path")
	c.postgresDSN = v.GetString("storage.postgres_dsn")

	if !config.IsValidFormat(c.format) {
		return fmt.Errorf("invalid format %q (supported: %v)", c.format, config.ValidFormats())
	}

	return nil
}

func (c *historyCommander) open(ctx context.Context) (storage.Driver, error) {
	return storeopen.Open(ctx, storeopen.Options{
		PostgresDSN: c.postgresDSN,
		SQLitePath:  c.sqlitePath,
		ConfigDir:   c.configDir,
		Persistent:  true,
		Logger:      logger.Nop(),
	})
}

func (c *historyCommander) list(ctx context.Context) error {
	driver, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	transcripts, err := driver.List(ctx, storage.ListOptions{
		Provider: c.provider,
		Limit:    c.limit,
	})
	if err != nil {
		return fmt.Errorf("listing transcripts: %w", err)
	}

	if c.format == config.FormatJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(transcripts)
	}

	if len(transcripts) == 0 {
		fmt.Fprintln(c.out, "No stored transcripts.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HASH\tCREATED\tPROVIDER\tCHUNKS\tERRORS\tSOURCE")
	for _, t := range transcripts {
		provider := t.Provider
		if provider == "" {
			provider = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Hash[:shortHashLen],
			t.CreatedAt.Local().Format(time.DateTime),
			provider,
			strconv.Itoa(t.ChunkCount),
			strconv.Itoa(t.ErrorCount),
			t.Source,
		)
	}
	return w.Flush()
}

func (c *historyCommander) show(ctx context.Context, hash string) error {
	driver, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	t, err := resolve(ctx, driver, hash)
	if err != nil {
		return err
	}

	if c.raw {
		_, err := io.WriteString(c.out, t.Input)
		return err
	}

	printer := &report.Printer{Out: c.out, Format: c.format}
	return printer.Print(report.Entry{Source: t.Source, Result: t.Result})
}

// resolve finds a transcript by full hash or by unique prefix.
func resolve(ctx context.Context, driver storage.Driver, hash string) (*storage.Transcript, error) {
	t, err := driver.Get(ctx, hash)
	if err == nil {
		return t, nil
	}

	var nf storage.NotFoundError
	if !errors.As(err, &nf) {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}

	if len(hash) < minPrefixLen {
		return nil, err
	}

	all, err := driver.List(ctx, storage.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}

	var match *storage.Transcript
	for _, candidate := range all {
		if !strings.HasPrefix(candidate.Hash, hash) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("hash prefix %q is ambiguous", hash)
		}
		match = candidate
	}

	if match == nil {
		return nil, storage.NotFoundError{Hash: hash}
	}
	return match, nil
}
