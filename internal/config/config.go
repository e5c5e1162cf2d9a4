package config

import (
	"fmt"
	"os"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr               string `mapstructure:"addr"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec"`
	ReadTimeoutSec     int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec    int    `mapstructure:"write_timeout_sec"`
	StaticDir          string `mapstructure:"static_dir"`
}

type ScanConfig struct {
	ProgressEvery int `mapstructure:"progress_every"`
	CancelWaitSec int `mapstructure:"cancel_wait_sec"`
	LogLimit      int `mapstructure:"log_limit"`
}

// DefaultsConfig seeds the UI and the CLI with their starting values.
type DefaultsConfig struct {
	Scale    float64 `mapstructure:"scale"`
	Width    int     `mapstructure:"width"`
	Quality  int     `mapstructure:"quality"`
	Format   string  `mapstructure:"format"`
	SaveMode string  `mapstructure:"save_mode"`
}

type RetryConfig struct {
	Attempts int     `mapstructure:"attempts"`
	DelayMs  int     `mapstructure:"delay_ms"`
	Backoff  float64 `mapstructure:"backoff"`
}

// UploadConfig controls optional publication of processed files to a
// storage backend in addition to the filesystem output.
type UploadConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Type         string `mapstructure:"type"`
	LocalPath    string `mapstructure:"local_path"`
	ProcessedDir string `mapstructure:"processed_dir"`

	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3UseSSL    bool   `mapstructure:"s3_use_ssl"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func Load(path string) (*Config, error) {
	cfg := config.New()

	configPath := path
	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		} else if _, err := os.Stat("/app/config.yaml"); err == nil {
			configPath = "/app/config.yaml"
		} else {
			return nil, fmt.Errorf("config.yaml not found")
		}
	}

	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = ""
	}

	if err := cfg.Load(configPath, envPath, "APP"); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	appConfig := &Config{}
	if err := cfg.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(appConfig)

	if err := validateConfig(appConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	zlog.Logger.Info().
		Str("addr", appConfig.Server.Addr).
		Int("scan_progress_every", appConfig.Scan.ProgressEvery).
		Float64("default_scale", appConfig.Defaults.Scale).
		Int("default_quality", appConfig.Defaults.Quality).
		Bool("upload_enabled", appConfig.Upload.Enabled).
		Msg("config loaded")

	return appConfig, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Scan.ProgressEvery <= 0 {
		cfg.Scan.ProgressEvery = 50
	}
	if cfg.Scan.CancelWaitSec <= 0 {
		cfg.Scan.CancelWaitSec = 1
	}
	if cfg.Scan.LogLimit <= 0 {
		cfg.Scan.LogLimit = 2000
	}
	if cfg.Defaults.Scale <= 0 || cfg.Defaults.Scale > 1 {
		cfg.Defaults.Scale = 0.5
	}
	if cfg.Defaults.Width <= 0 {
		cfg.Defaults.Width = 1920
	}
	if cfg.Defaults.Quality < 1 || cfg.Defaults.Quality > 100 {
		cfg.Defaults.Quality = 95
	}
	if cfg.Defaults.Format == "" {
		cfg.Defaults.Format = "original"
	}
	if cfg.Defaults.SaveMode == "" {
		cfg.Defaults.SaveMode = "newfile"
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry.Attempts = 3
	}
	if cfg.Retry.DelayMs <= 0 {
		cfg.Retry.DelayMs = 200
	}
	if cfg.Retry.Backoff <= 0 {
		cfg.Retry.Backoff = 2.0
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "./static"
	}
	if cfg.Upload.ProcessedDir == "" {
		cfg.Upload.ProcessedDir = "processed"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if cfg.Server.ShutdownTimeoutSec <= 0 {
		return fmt.Errorf("server.shutdown_timeout_sec must be positive")
	}
	if cfg.Server.ReadTimeoutSec <= 0 {
		return fmt.Errorf("server.read_timeout_sec must be positive")
	}
	if cfg.Server.WriteTimeoutSec <= 0 {
		return fmt.Errorf("server.write_timeout_sec must be positive")
	}

	switch cfg.Defaults.SaveMode {
	case "overwrite", "newfile":
	default:
		return fmt.Errorf("defaults.save_mode must be 'overwrite' or 'newfile'")
	}
	switch cfg.Defaults.Format {
	case "original", "png", "jpeg", "webp":
	default:
		return fmt.Errorf("defaults.format must be one of original|png|jpeg|webp")
	}

	if cfg.Upload.Enabled {
		if cfg.Upload.Type != "local" && cfg.Upload.Type != "s3" {
			return fmt.Errorf("upload.type must be 'local' or 's3'")
		}
		if cfg.Upload.Type == "local" && cfg.Upload.LocalPath == "" {
			return fmt.Errorf("upload.local_path is required for local upload")
		}
		if cfg.Upload.Type == "s3" {
			if cfg.Upload.S3Endpoint == "" {
				return fmt.Errorf("upload.s3_endpoint is required for s3 upload")
			}
			if cfg.Upload.S3Bucket == "" {
				return fmt.Errorf("upload.s3_bucket is required for s3 upload")
			}
			if cfg.Upload.S3AccessKey == "" || cfg.Upload.S3SecretKey == "" {
				return fmt.Errorf("upload.s3_access_key and upload.s3_secret_key are required for s3 upload")
			}
		}
	}

	if cfg.Logging.Level == "" {
		return fmt.Errorf("logging.level is required")
	}

	return nil
}
