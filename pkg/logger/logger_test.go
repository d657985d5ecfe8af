package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/pkg/logger"
)

func decodeJSON(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal(buf.Bytes(), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("New", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("writes text records by default", func() {
		logger.New(logger.WithWriter(buf)).Info("reconstructed stream", "chunks", 3)

		Expect(buf.String()).To(ContainSubstring("msg=\"reconstructed stream\""))
		Expect(buf.String()).To(ContainSubstring("chunks=3"))
	})

	DescribeTable("level filtering",
		func(opt logger.Option, logDebug bool) {
			l := logger.New(logger.WithWriter(buf), opt)
			l.Debug("skipping non-JSON segment")

			if logDebug {
				Expect(buf.String()).To(ContainSubstring("skipping non-JSON segment"))
			} else {
				Expect(buf.String()).To(BeEmpty())
			}
		},
		Entry("debug on", logger.WithDebug(true), true),
		Entry("debug off", logger.WithDebug(false), false),
		Entry("explicit warn level", logger.WithLevel(slog.LevelWarn), false),
	)

	It("writes JSON records", func() {
		logger.New(logger.WithWriter(buf), logger.WithJSON(true)).Info("stored transcript", "new", true)

		parsed := decodeJSON(buf)
		Expect(parsed).To(HaveKeyWithValue("msg", "stored transcript"))
		Expect(parsed).To(HaveKeyWithValue("new", true))
		Expect(parsed).NotTo(HaveKey("source"))
	})

	It("adds the call site when asked", func() {
		logger.New(logger.WithWriter(buf), logger.WithJSON(true), logger.WithSource(true)).Info("located")

		Expect(decodeJSON(buf)).To(HaveKey("source"))
	})

	It("prefers pretty output over JSON", func() {
		logger.New(logger.WithWriter(buf), logger.WithPretty(true), logger.WithJSON(true)).Info("styled")

		Expect(json.Valid(buf.Bytes())).To(BeFalse())
		Expect(buf.String()).To(ContainSubstring("styled"))
	})

	It("copies records to every writer", func() {
		other := &bytes.Buffer{}
		logger.New(logger.WithWriters(buf, other)).Info("twice")

		Expect(buf.String()).To(ContainSubstring("twice"))
		Expect(other.String()).To(ContainSubstring("twice"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		h := logger.Nop().Handler()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			Expect(h.Enabled(context.Background(), level)).To(BeFalse())
		}
	})
})

// failingHandler accepts everything and fails every write.
type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h failingHandler) WithGroup(string) slog.Handler { return h }

var _ = Describe("Multi", func() {
	var console, file *bytes.Buffer

	BeforeEach(func() {
		console = &bytes.Buffer{}
		file = &bytes.Buffer{}
	})

	It("writes to every logger", func() {
		multi := logger.Multi(
			logger.New(logger.WithWriter(console)),
			logger.New(logger.WithWriter(file), logger.WithJSON(true)),
		)
		multi.Info("listening", "addr", ":8081")

		Expect(console.String()).To(ContainSubstring("listening"))
		Expect(decodeJSON(file)).To(HaveKeyWithValue("addr", ":8081"))
	})

	It("respects each logger's level", func() {
		multi := logger.Multi(
			logger.New(logger.WithWriter(console)),
			logger.New(logger.WithWriter(file), logger.WithDebug(true)),
		)
		multi.Debug("detail")

		Expect(console.String()).To(BeEmpty())
		Expect(file.String()).To(ContainSubstring("detail"))
	})

	It("is disabled when no logger wants the level", func() {
		multi := logger.Multi(logger.New(logger.WithWriter(console)), nil)
		Expect(multi.Enabled(context.Background(), slog.LevelDebug)).To(BeFalse())
		Expect(multi.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
	})

	It("carries attributes and groups to every logger", func() {
		multi := logger.Multi(logger.New(logger.WithWriter(file), logger.WithJSON(true)))
		multi.With("component", "worker").WithGroup("job").Info("processed", "hash", "abc")

		parsed := decodeJSON(file)
		Expect(parsed).To(HaveKeyWithValue("component", "worker"))
		Expect(parsed).To(HaveKeyWithValue("job", HaveKeyWithValue("hash", "abc")))
	})

	It("keeps writing after one handler fails", func() {
		multi := logger.Multi(
			slog.New(failingHandler{}),
			logger.New(logger.WithWriter(console)),
		)

		err := multi.Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0))
		Expect(err).To(MatchError("disk full"))
		Expect(console.String()).To(ContainSubstring("still here"))
	})
})
