package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tickethub/rpc-failover/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Address:     ":8545",
			Environment: "dev",
		},
		Endpoints: []string{
			"https://rpc-1.example.com",
			"https://rpc-2.example.com",
		},
		HealthCheck: config.HealthCheckConfig{Interval: "30s"},
		Failover:    config.FailoverConfig{MaxConsecutiveFailures: 3},
		Breaker: config.BreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     "30s",
		},
		Connection: config.ConnectionConfig{
			Timeout:    "10s",
			Commitment: "confirmed",
		},
		Cache: config.CacheConfig{
			Enabled: true,
			Size:    512,
			TTL:     "2s",
			Methods: []string{"getSlot"},
		},
		Logging: config.LoggingConfig{Level: "info"},
	}
}

var _ = Describe("Config", func() {
	Describe("Load", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "config-test-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(tempDir)
		})

		Context("with valid config file", func() {
			BeforeEach(func() {
				configContent := `
server:
  address: ":8545"
  environment: "dev"

endpoints:
  - "https://rpc-1.example.com"
  - "https://rpc-2.example.com"

health_check:
  interval: "15s"

failover:
  max_consecutive_failures: 2

breaker:
  failure_threshold: 4
  reset_timeout: "20s"

connection:
  timeout: "5s"
  commitment: "finalized"

logging:
  level: "debug"
`
				configPath := filepath.Join(tempDir, "config.yaml")
				err := os.WriteFile(configPath, []byte(configContent), 0644)
				Expect(err).NotTo(HaveOccurred())

				err = os.Chdir(tempDir)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Address).To(Equal(":8545"))
				Expect(cfg.Endpoints).To(HaveLen(2))
				Expect(cfg.Endpoints[0]).To(Equal("https://rpc-1.example.com"))
				Expect(cfg.HealthCheck.Interval).To(Equal("15s"))
				Expect(cfg.Failover.MaxConsecutiveFailures).To(Equal(2))
				Expect(cfg.Breaker.FailureThreshold).To(Equal(4))
				Expect(cfg.Connection.Commitment).To(Equal("finalized"))
				Expect(cfg.Logging.Level).To(Equal("debug"))
			})

			It("should keep defaults for sections the file omits", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Cache.Enabled).To(BeTrue())
				Expect(cfg.Cache.Size).To(Equal(512))
				Expect(cfg.Logging.MaxSizeMB).To(Equal(100))
			})
		})
	})

	Describe("Validate", func() {
		It("should accept a valid configuration", func() {
			Expect(validConfig().Validate()).To(Succeed())
		})

		It("should reject an empty endpoint list", func() {
			cfg := validConfig()
			cfg.Endpoints = nil
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject endpoints without an http scheme", func() {
			cfg := validConfig()
			cfg.Endpoints = []string{"wss://rpc-1.example.com"}
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject a malformed health check interval", func() {
			cfg := validConfig()
			cfg.HealthCheck.Interval = "soon"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject a non-positive failure threshold", func() {
			cfg := validConfig()
			cfg.Failover.MaxConsecutiveFailures = 0
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject an unknown commitment level", func() {
			cfg := validConfig()
			cfg.Connection.Commitment = "eventual"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject an unknown log level", func() {
			cfg := validConfig()
			cfg.Logging.Level = "verbose"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject an address without a port", func() {
			cfg := validConfig()
			cfg.Server.Address = "localhost"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should skip cache tuning checks when the cache is disabled", func() {
			cfg := validConfig()
			cfg.Cache = config.CacheConfig{Enabled: false}
			Expect(cfg.Validate()).To(Succeed())
		})
	})
})
