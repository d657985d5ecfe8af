package restreamcmder_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	restreamcmder "github.com/papercomputeco/restream/cmd/restream"
	"github.com/papercomputeco/restream/pkg/storage"
)

const (
	openAIStream = `data: {"id":"chatcmpl-1","model":"gpt-4o","choices":[{"delta":{"content":"Hello"}}]}
data: {"id":"chatcmpl-1","choices":[{"delta":{"content":" world"},"finish_reason":"stop"}]}
data: [DONE]
`
	anthropicStream = `event: message_start
data: {"type":"message_start","message":{"id":"msg_1","model":"claude-sonnet-4"}}
data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Bonjour"}}
data: {"type":"message_delta","delta":{"stop_reason":"end_turn"}}
`
	brokenStream = "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\ndata: {not json\n"
)

var _ = Describe("restream", func() {
	var (
		configDir string
		workDir   string
		stdout    *bytes.Buffer
		stderr    *bytes.Buffer
	)

	execute := func(stdin string, args ...string) error {
		cmd := restreamcmder.NewRestreamCmd()
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(append([]string{"--config-dir", configDir}, args...))
		return cmd.Execute()
	}

	writeFile := func(name, content string) string {
		path := filepath.Join(workDir, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		workDir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	It("registers every subcommand", func() {
		cmd := restreamcmder.NewRestreamCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("parse", "watch", "serve", "history", "config", "version"))
	})

	It("prints the version", func() {
		Expect(execute("", "version")).To(Succeed())
		Expect(stdout.String()).To(HavePrefix("Version: "))
	})

	Describe("parse", func() {
		It("reconstructs a file", func() {
			path := writeFile("openai.sse", openAIStream)

			Expect(execute("", "parse", path)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Hello world"))
			Expect(stdout.String()).To(ContainSubstring("gpt-4o"))
			Expect(stdout.String()).To(ContainSubstring("stop"))
		})

		It("reads stdin when no file is given", func() {
			Expect(execute(anthropicStream, "parse")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Bonjour"))
			Expect(stdout.String()).To(ContainSubstring("end_turn"))
		})

		It("prints a bare result as JSON for one input", func() {
			Expect(execute(openAIStream, "parse", "--format", "json")).To(Succeed())

			var result map[string]any
			Expect(json.Unmarshal(stdout.Bytes(), &result)).To(Succeed())
			Expect(result["content"]).To(Equal("Hello world"))
			Expect(result).To(HaveKeyWithValue("errors", BeNil()))
		})

		It("prints an array as JSON for several inputs, in argument order", func() {
			a := writeFile("a.sse", openAIStream)
			b := writeFile("b.sse", anthropicStream)

			Expect(execute("", "parse", "-f", "json", a, b)).To(Succeed())

			var entries []struct {
				Source string `json:"source"`
				Result struct {
					Content string `json:"content"`
				} `json:"result"`
			}
			Expect(json.Unmarshal(stdout.Bytes(), &entries)).To(Succeed())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Source).To(Equal(a))
			Expect(entries[0].Result.Content).To(Equal("Hello world"))
			Expect(entries[1].Source).To(Equal(b))
			Expect(entries[1].Result.Content).To(Equal("Bonjour"))
		})

		It("reports parse errors without failing", func() {
			Expect(execute(brokenStream, "parse")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("ok"))
			Expect(stdout.String()).To(ContainSubstring("1 error"))
			Expect(stdout.String()).To(ContainSubstring("Invalid JSON - {not json"))
		})

		It("fails for unreadable files but prints the rest", func() {
			good := writeFile("good.sse", openAIStream)
			missing := filepath.Join(workDir, "missing.sse")

			err := execute("", "parse", good, missing)
			Expect(err).To(MatchError(ContainSubstring("missing.sse")))
			Expect(stdout.String()).To(ContainSubstring("Hello world"))
			Expect(stderr.String()).To(ContainSubstring("missing.sse"))
		})

		It("rejects unknown formats", func() {
			err := execute(openAIStream, "parse", "--format", "yaml")
			Expect(err).To(MatchError(ContainSubstring("invalid format")))
		})

		It("uses the configured format", func() {
			Expect(execute("", "config", "set", "parse.format", "json")).To(Succeed())
			stdout.Reset()

			Expect(execute(openAIStream, "parse")).To(Succeed())
			Expect(json.Valid(stdout.Bytes())).To(BeTrue())
		})
	})

	Describe("history", func() {
		It("reports an empty store", func() {
			Expect(execute("", "history")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("No stored transcripts."))
		})

		Context("after parse --save", func() {
			var hash string

			BeforeEach(func() {
				path := writeFile("openai.sse", openAIStream)
				hash = storage.HashInput(openAIStream)

				Expect(execute("", "parse", "--save", path)).To(Succeed())
				Expect(stderr.String()).To(ContainSubstring("saved"))
				Expect(filepath.Join(configDir, "restream.sqlite")).To(BeAnExistingFile())

				stdout.Reset()
				stderr.Reset()
			})

			It("does not store the same transcript twice", func() {
				path := writeFile("copy.sse", openAIStream)

				Expect(execute("", "parse", "--save", path)).To(Succeed())
				Expect(stderr.String()).To(ContainSubstring("already stored"))
			})

			It("lists stored transcripts", func() {
				Expect(execute("", "history")).To(Succeed())
				Expect(stdout.String()).To(ContainSubstring(hash[:12]))
				Expect(stdout.String()).To(ContainSubstring("openai"))
			})

			It("lists stored transcripts as JSON", func() {
				Expect(execute("", "history", "--format", "json")).To(Succeed())

				var records []storage.Transcript
				Expect(json.Unmarshal(stdout.Bytes(), &records)).To(Succeed())
				Expect(records).To(HaveLen(1))
				Expect(records[0].Hash).To(Equal(hash))
				Expect(records[0].Result.Content).To(Equal("Hello world"))
			})

			It("filters by provider", func() {
				Expect(execute("", "history", "--provider", "anthropic")).To(Succeed())
				Expect(stdout.String()).To(ContainSubstring("No stored transcripts."))
			})

			It("shows a transcript by hash prefix", func() {
				Expect(execute("", "history", hash[:8])).To(Succeed())
				Expect(stdout.String()).To(ContainSubstring("Hello world"))
			})

			It("prints the raw transcript", func() {
				Expect(execute("", "history", "--raw", hash)).To(Succeed())
				Expect(stdout.String()).To(Equal(openAIStream))
			})

			It("fails for unknown hashes", func() {
				err := execute("", "history", "ffffffffff")
				Expect(err).To(MatchError(ContainSubstring("transcript not found")))
			})
		})
	})
})
