package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds daemon configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	DataDir    string
	MaxRecords int
	Retention  time.Duration

	SampleInterval  time.Duration
	PersistInterval time.Duration
	CleanupInterval time.Duration

	CacheTTL     time.Duration
	CacheBackend string // "in_memory" or "memcached"

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	NetworkProbeTimeout time.Duration
	NetworkCacheTTL     time.Duration

	RequestTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	OverloadWindow       time.Duration
	OverloadThresholdPct int
	DegradedWindow       time.Duration
	DegradedErrorPct     int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Data struct {
		Dir        string `yaml:"dir"`
		MaxRecords int    `yaml:"max_records"`
		Retention  string `yaml:"retention"`
	} `yaml:"data"`

	Monitor struct {
		SampleInterval  string `yaml:"sample_interval"`
		PersistInterval string `yaml:"persist_interval"`
		CleanupInterval string `yaml:"cleanup_interval"`
	} `yaml:"monitor"`

	Cache struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Network struct {
		ProbeTimeout string `yaml:"probe_timeout"`
		CacheTTL     string `yaml:"cache_ttl"`
	} `yaml:"network"`

	Reliability struct {
		RequestTimeout string `yaml:"request_timeout"`
		RateLimitRPS   int    `yaml:"rate_limit_rps"`
		RateLimitBurst int    `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Health struct {
		OverloadWindow       string `yaml:"overload_window"`
		OverloadThresholdPct int    `yaml:"overload_threshold_pct"`
		DegradedWindow       string `yaml:"degraded_window"`
		DegradedErrorPct     int    `yaml:"degraded_error_pct"`
	} `yaml:"health"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"inflight_timeout"`
		InFlightCheckInterval string `yaml:"inflight_check_interval"`
	} `yaml:"shutdown"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev).
// A missing file yields defaults; NETKIT_DATA_DIR, CACHE_BACKEND and
// MEMCACHED_ADDRS env vars override their file counterparts.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8321"
	}

	cfg.DataDir = strings.TrimSpace(os.Getenv("NETKIT_DATA_DIR"))
	if cfg.DataDir == "" {
		cfg.DataDir = strings.TrimSpace(fc.Data.Dir)
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, "NetSpeedData")
	}

	cfg.MaxRecords = fc.Data.MaxRecords
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = 525600 // one year of per-second samples at minute density
	}
	cfg.Retention = parseDuration(fc.Data.Retention, 365*24*time.Hour)

	cfg.SampleInterval = parseDuration(fc.Monitor.SampleInterval, time.Second)
	cfg.PersistInterval = parseDuration(fc.Monitor.PersistInterval, 30*time.Second)
	cfg.CleanupInterval = parseDuration(fc.Monitor.CleanupInterval, 7*24*time.Hour)

	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 30*time.Second)
	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}
	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.NetworkProbeTimeout = parseDuration(fc.Network.ProbeTimeout, 5*time.Second)
	cfg.NetworkCacheTTL = parseDuration(fc.Network.CacheTTL, 30*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Reliability.RequestTimeout, 5*time.Second)
	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 50
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}

	cfg.OverloadWindow = parseDuration(fc.Health.OverloadWindow, 60*time.Second)
	cfg.OverloadThresholdPct = fc.Health.OverloadThresholdPct
	if cfg.OverloadThresholdPct <= 0 {
		cfg.OverloadThresholdPct = 80
	}
	cfg.DegradedWindow = parseDuration(fc.Health.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = fc.Health.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 20
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails
// or the result is <= 0. Used for duration fields from YAML config.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	switch cfg.CacheBackend {
	case "in_memory", "memcached":
		// valid
	default:
		return fmt.Errorf("cache.backend must be in_memory or memcached, got %q", cfg.CacheBackend)
	}
	if cfg.SampleInterval >= cfg.PersistInterval {
		return fmt.Errorf("monitor.sample_interval (%s) must be shorter than monitor.persist_interval (%s)",
			cfg.SampleInterval, cfg.PersistInterval)
	}
	if cfg.Retention < 24*time.Hour {
		return fmt.Errorf("data.retention must be at least 24h, got %s", cfg.Retention)
	}
	return nil
}
