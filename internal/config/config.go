package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress       string
	DatabaseURI      string
	PayOSAPIURL      string
	PayOSClientID    string
	PayOSAPIKey      string
	PayOSChecksumKey string
	ReturnURL        string
	CancelURL        string
	LicenseTTL       time.Duration
	BindingPolicy    string
	AdminPassword    string
	AdminTokenSecret string
	AdminTokenTTL    time.Duration
	SweepInterval    time.Duration
	SweepBatch       int
	WorkerPoolSize   int
	PendingMinAge    time.Duration
	ShutdownTimeout  time.Duration
}

// Binding policy values accepted by BINDING_POLICY.
const (
	BindingPolicyStrict  = "strict"
	BindingPolicyLenient = "lenient"
)

const (
	defaultRunAddress       = ":8080"
	defaultPayOSAPIURL      = "https://api-merchant.payos.vn"
	defaultLicenseTTL       = 365 * 24 * time.Hour
	defaultBindingPolicy    = BindingPolicyStrict
	defaultAdminTokenSecret = "change-me-in-production"
	defaultAdminTokenTTL    = 12 * time.Hour
	defaultSweepInterval    = time.Minute
	defaultSweepBatch       = 16
	defaultWorkerPoolSize   = 2
	defaultPendingMinAge    = 2 * time.Minute
	defaultShutdownTimeout  = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:       getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:      getString(lookup, "DATABASE_URI", ""),
		PayOSAPIURL:      getString(lookup, "PAYOS_API_URL", defaultPayOSAPIURL),
		PayOSClientID:    getString(lookup, "PAYOS_CLIENT_ID", ""),
		PayOSAPIKey:      getString(lookup, "PAYOS_API_KEY", ""),
		PayOSChecksumKey: getString(lookup, "PAYOS_CHECKSUM_KEY", ""),
		ReturnURL:        getString(lookup, "RETURN_URL", ""),
		CancelURL:        getString(lookup, "CANCEL_URL", ""),
		LicenseTTL:       getDuration(lookup, "LICENSE_TTL", defaultLicenseTTL),
		BindingPolicy:    getString(lookup, "BINDING_POLICY", defaultBindingPolicy),
		AdminPassword:    getString(lookup, "ADMIN_PASSWORD", ""),
		AdminTokenSecret: getString(lookup, "ADMIN_TOKEN_SECRET", defaultAdminTokenSecret),
		AdminTokenTTL:    getDuration(lookup, "ADMIN_TOKEN_TTL", defaultAdminTokenTTL),
		SweepInterval:    getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SweepBatch:       getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatch),
		WorkerPoolSize:   getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		PendingMinAge:    getDuration(lookup, "PENDING_MIN_AGE", defaultPendingMinAge),
		ShutdownTimeout:  getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("packstore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		licenseTTLStr      = cfg.LicenseTTL.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN (empty keeps state in memory)")
	fs.StringVar(&cfg.PayOSAPIURL, "payos-url", cfg.PayOSAPIURL, "PayOS API base URL")
	fs.StringVar(&cfg.PayOSClientID, "payos-client-id", cfg.PayOSClientID, "PayOS client id header")
	fs.StringVar(&cfg.PayOSAPIKey, "payos-api-key", cfg.PayOSAPIKey, "PayOS api key header")
	fs.StringVar(&cfg.ReturnURL, "return-url", cfg.ReturnURL, "Redirect target after successful checkout")
	fs.StringVar(&cfg.CancelURL, "cancel-url", cfg.CancelURL, "Redirect target after cancelled checkout")
	fs.StringVar(&cfg.BindingPolicy, "binding-policy", cfg.BindingPolicy, "Device binding policy: strict or lenient")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Password protecting the admin surface")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent sweep workers")
	fs.IntVar(&cfg.SweepBatch, "sweep-batch", cfg.SweepBatch, "Maximum pending orders per sweep batch")
	fs.StringVar(&licenseTTLStr, "license-ttl", licenseTTLStr, "License validity window from mint time")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between pending order sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.LicenseTTL, err = time.ParseDuration(licenseTTLStr); err != nil {
		return nil, fmt.Errorf("invalid license ttl: %w", err)
	}

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if keyFile, ok := lookup("PAYOS_CHECKSUM_KEY_FILE"); ok && keyFile != "" {
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read checksum key file: %w", err)
		}
		cfg.PayOSChecksumKey = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = defaultSweepBatch
	}

	if cfg.LicenseTTL <= 0 {
		cfg.LicenseTTL = defaultLicenseTTL
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.PendingMinAge < 0 {
		cfg.PendingMinAge = defaultPendingMinAge
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.BindingPolicy != BindingPolicyStrict && cfg.BindingPolicy != BindingPolicyLenient {
		return nil, fmt.Errorf("binding policy must be %q or %q", BindingPolicyStrict, BindingPolicyLenient)
	}

	if cfg.PayOSClientID == "" || cfg.PayOSAPIKey == "" || cfg.PayOSChecksumKey == "" {
		return nil, fmt.Errorf("payos credentials must be provided")
	}

	if cfg.ReturnURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("return and cancel URLs must be provided")
	}

	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("admin password must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
