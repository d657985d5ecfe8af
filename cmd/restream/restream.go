// Package restreamcmder
package restreamcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/restream/cmd/restream/config"
	historycmder "github.com/papercomputeco/restream/cmd/restream/history"
	parsecmder "github.com/papercomputeco/restream/cmd/restream/parse"
	servecmder "github.com/papercomputeco/restream/cmd/restream/serve"
	watchcmder "github.com/papercomputeco/restream/cmd/restream/watch"
	versioncmder "github.com/papercomputeco/restream/cmd/version"
)

const restreamLongDesc string = `restream rebuilds the full LLM message from a raw server-sent events
transcript, even when the transcript is truncated or malformed.

OpenAI, Anthropic and Google Gemini chunk formats are detected per chunk.

Common commands:
  restream parse stream.sse        Reconstruct a saved transcript
  curl ... | restream parse        Reconstruct from stdin
  restream watch stream.sse        Re-render a transcript as it is written
  restream serve                   Run the HTTP and MCP API
  restream history                 Browse saved transcripts`

const restreamShortDesc string = "restream - SSE transcript reconstruction"

func NewRestreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "restream",
		Short:        restreamShortDesc,
		Long:         restreamLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .restream/ config directory")

	// Add subcommands
	cmd.AddCommand(parsecmder.NewParseCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
