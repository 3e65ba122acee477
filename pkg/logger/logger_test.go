package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("creates a default text logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("hello", "key", "value")

			output := buf.String()
			Expect(output).To(ContainSubstring("hello"))
			Expect(output).To(ContainSubstring("key"))
			Expect(output).To(ContainSubstring("value"))
		})

		It("respects debug level", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
			l.Debug("debug msg")

			Expect(buf.String()).To(ContainSubstring("debug msg"))
		})

		It("filters debug when not enabled", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(false))
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("creates a JSON logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("structured", "count", 42)

			var parsed map[string]any
			err := json.Unmarshal(buf.Bytes(), &parsed)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed["msg"]).To(Equal("structured"))
			Expect(parsed["count"]).To(BeNumerically("==", 42))
		})

		It("creates a pretty logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.Info("pretty output")

			Expect(buf.String()).To(ContainSubstring("pretty output"))
		})

		It("supports multiple writers", func() {
			var buf1, buf2 bytes.Buffer
			l := logger.New(logger.WithWriters(&buf1, &buf2))
			l.Info("multi")

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})
	})

	Describe("Multi", func() {
		It("dispatches records to every handler", func() {
			var pretty, structured bytes.Buffer
			l := logger.Multi(
				logger.New(logger.WithWriter(&pretty), logger.WithPretty(true)),
				logger.New(logger.WithWriter(&structured), logger.WithJSON(true)),
			)

			l.Info("fan out", "source", "test")

			Expect(pretty.String()).To(ContainSubstring("fan out"))
			Expect(structured.String()).To(ContainSubstring("fan out"))
		})

		It("respects each handler's level independently", func() {
			var debugBuf, infoBuf bytes.Buffer
			l := logger.Multi(
				logger.New(logger.WithWriter(&debugBuf), logger.WithDebug(true)),
				logger.New(logger.WithWriter(&infoBuf), logger.WithDebug(false)),
			)

			l.Debug("only for debug")

			Expect(debugBuf.String()).To(ContainSubstring("only for debug"))
			Expect(infoBuf.String()).To(BeEmpty())
		})

		It("propagates WithAttrs to children", func() {
			var buf bytes.Buffer
			l := logger.Multi(logger.New(logger.WithWriter(&buf)))
			l = l.With("component", "ingest")

			l.Info("attributed")

			Expect(buf.String()).To(ContainSubstring("component"))
			Expect(buf.String()).To(ContainSubstring("ingest"))
		})

		It("reports enabled when any child is enabled", func() {
			debugLogger := logger.New(logger.WithDebug(true), logger.WithWriter(&bytes.Buffer{}))
			infoLogger := logger.New(logger.WithDebug(false), logger.WithWriter(&bytes.Buffer{}))

			l := logger.Multi(debugLogger, infoLogger)
			Expect(l.Handler().Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
		})
	})

	Describe("Nop", func() {
		It("discards output without panicking", func() {
			l := logger.Nop()
			Expect(func() { l.Info("dropped", "k", strings.Repeat("v", 10)) }).NotTo(Panic())
		})
	})
})
