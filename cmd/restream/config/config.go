// Package configcmder provides the config command for managing persistent
// restream configuration stored in the .restream/ directory.
package configcmder

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/restream/pkg/cliui"
	"github.com/papercomputeco/restream/pkg/config"
)

const configLongDesc string = `Manage persistent restream configuration.

Configuration is stored as config.toml in the .restream/ directory and
provides default values for command flags. Environment variables
(RESTREAM_PARSE_FORMAT, ...) and CLI flags take precedence over it.

Keys use dotted notation matching the TOML section structure:
  parse.repair, parse.format,
  watch.debounce_ms,
  api.listen,
  storage.sqlite_path, storage.postgres_dsn,
  eventstream.kafka_brokers, eventstream.kafka_topic

Examples:
  restream config set parse.format json
  restream config set eventstream.kafka_brokers localhost:9092,localhost:9093
  restream config get parse.format
  restream config list`

const configShortDesc string = "Manage persistent restream configuration"

type configCommander struct {
	configDir string
	out       io.Writer
}

func NewConfigCmd() *cobra.Command {
	cmder := &configCommander{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Set a configuration value",
		Long:              "Set a configuration value in config.toml, creating the file if needed.",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.set(args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:               "get <key>",
		Short:             "Get a configuration value",
		Long:              "Print the value of one key, or nothing when it is unset.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.get(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long:  "List every configuration key with its value from config.toml or its default.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.list()
		},
	})

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// configer validates key (when given) and opens the resolved config file.
func (c *configCommander) configer(key string) (*config.Configer, error) {
	if key != "" && !config.IsValidConfigKey(key) {
		return nil, fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfger, nil
}

func (c *configCommander) set(key, value string) error {
	cfger, err := c.configer(key)
	if err != nil {
		return err
	}

	if cfger.GetTarget() == "" {
		return errors.New("no .restream/ directory found: create one or pass --config-dir")
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s %s = %s  %s\n",
		cliui.SuccessMark,
		key,
		cliui.ValueStyle.Render(value),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}

// get prints the bare value so it can be used in scripts.
func (c *configCommander) get(key string) error {
	cfger, err := c.configer(key)
	if err != nil {
		return err
	}

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, value)
	return nil
}

func (c *configCommander) list() error {
	cfger, err := c.configer("")
	if err != nil {
		return err
	}

	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(c.out, "%s\n\n", cliui.DimStyle.Render("# "+target))
	} else {
		fmt.Fprintf(c.out, "%s\n\n", cliui.DimStyle.Render("# no config file, showing defaults"))
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 1, ' ', 0)
	for _, key := range config.ValidConfigKeys() {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		if value == "" {
			fmt.Fprintf(w, "%s\t= %s\n", key, cliui.DimStyle.Render("<not set>"))
		} else {
			fmt.Fprintf(w, "%s\t= %q\n", key, value)
		}
	}
	return w.Flush()
}
