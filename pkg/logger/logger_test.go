package logger_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tickethub/rpc-failover/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("should create a logger with defaults", func() {
			log := logger.New(logger.Options{Level: "info", Environment: "dev"})
			Expect(log).NotTo(BeNil())
			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
		})

		It("should respect the debug level", func() {
			log := logger.New(logger.Options{Level: "debug", Environment: "dev"})
			Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
		})

		It("should fall back to info for unknown levels", func() {
			log := logger.New(logger.Options{Level: "chatty", Environment: "dev"})
			Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeFalse())
			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
		})

		It("should write to a rotated file when configured", func() {
			dir, err := os.MkdirTemp("", "logger-test-*")
			Expect(err).NotTo(HaveOccurred())
			defer os.RemoveAll(dir)

			file := filepath.Join(dir, "failover.log")
			log := logger.New(logger.Options{
				Level:       "info",
				Environment: "prod",
				File:        file,
				MaxSizeMB:   1,
				MaxBackups:  1,
			})
			log.Info("hello")

			contents, err := os.ReadFile(file)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(contents)).To(ContainSubstring(`"msg":"hello"`))
		})
	})
})
