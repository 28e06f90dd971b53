package config

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Sources  SourcesConfig  `yaml:"sources"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	History  HistoryConfig  `yaml:"history"`
	Publish  PublishConfig  `yaml:"publish"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type SourcesConfig struct {
	UserAgent string           `yaml:"user_agent"`
	BCRA      BCRASourceConfig `yaml:"bcra"`
	Extras    EndpointConfig   `yaml:"extras"`
	Dolar     EndpointConfig   `yaml:"dolar"`
}

type BCRASourceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// SeriesRatePerSecond throttles history requests.
	SeriesRatePerSecond float64 `yaml:"series_rate_per_second"`
	SeriesBurst         int     `yaml:"series_burst"`
}

type EndpointConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type PipelineConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type HistoryConfig struct {
	Months   int           `yaml:"months"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type PublishConfig struct {
	Log bool     `yaml:"log"`
	S3  S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type MetricsConfig struct {
	CloudWatch     CloudWatchConfig `yaml:"cloudwatch"`
	ReportInterval time.Duration    `yaml:"report_interval"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

const (
	DefaultBCRABaseURL     = "https://api.bcra.gob.ar"
	DefaultExtrasURL       = "https://66ac1eeff009b9d5c73124ca.mockapi.io/api/finanzas"
	DefaultDolarURL        = "https://criptoya.com/api/dolar"
	DefaultTimeout         = 10 * time.Second
	DefaultRefreshInterval = 5 * time.Minute
	DefaultHistoryMonths   = 12
	DefaultHistoryCacheTTL = time.Hour
	DefaultS3Key           = "snapshot.json"
)

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		App: AppConfig{Name: "bcrawatch", Version: "0.1.0"},
		Sources: SourcesConfig{
			UserAgent: "bcrawatch/0.1",
			BCRA: BCRASourceConfig{
				BaseURL:             DefaultBCRABaseURL,
				Timeout:             DefaultTimeout,
				SeriesRatePerSecond: 2,
				SeriesBurst:         2,
			},
			Extras: EndpointConfig{Enabled: true, URL: DefaultExtrasURL, Timeout: DefaultTimeout},
			Dolar:  EndpointConfig{Enabled: true, URL: DefaultDolarURL, Timeout: DefaultTimeout},
		},
		Pipeline: PipelineConfig{RefreshInterval: DefaultRefreshInterval},
		History:  HistoryConfig{Months: DefaultHistoryMonths, CacheTTL: DefaultHistoryCacheTTL},
		Publish: PublishConfig{
			Log: true,
			S3:  S3Config{Key: DefaultS3Key},
		},
		Metrics: MetricsConfig{
			CloudWatch:     CloudWatchConfig{Namespace: "BCRAWatch"},
			ReportInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error:
// the defaults are complete on their own.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override S3 settings from environment variables if available
	if config.Publish.S3.Enabled || config.Metrics.CloudWatch.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Publish.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Publish.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			if config.Publish.S3.Region == "" {
				config.Publish.S3.Region = strings.TrimSpace(v)
			}
			if config.Metrics.CloudWatch.Region == "" {
				config.Metrics.CloudWatch.Region = strings.TrimSpace(v)
			}
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Publish.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Publish.S3.Bucket = strings.TrimSpace(config.Publish.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if err := validateURL("sources.bcra.base_url", cfg.Sources.BCRA.BaseURL); err != nil {
		return err
	}
	if cfg.Sources.BCRA.Timeout <= 0 {
		return fmt.Errorf("sources.bcra.timeout must be greater than 0")
	}
	if cfg.Sources.BCRA.SeriesRatePerSecond <= 0 {
		return fmt.Errorf("sources.bcra.series_rate_per_second must be greater than 0")
	}

	for name, ep := range map[string]EndpointConfig{"sources.extras": cfg.Sources.Extras, "sources.dolar": cfg.Sources.Dolar} {
		if !ep.Enabled {
			continue
		}
		if err := validateURL(name+".url", ep.URL); err != nil {
			return err
		}
		if ep.Timeout <= 0 {
			return fmt.Errorf("%s.timeout must be greater than 0", name)
		}
	}

	if cfg.Pipeline.RefreshInterval <= 0 {
		return fmt.Errorf("pipeline.refresh_interval must be greater than 0")
	}

	if cfg.History.Months <= 0 {
		return fmt.Errorf("history.months must be greater than 0")
	}
	if cfg.History.CacheTTL < 0 {
		return fmt.Errorf("history.cache_ttl must not be negative")
	}

	if cfg.Publish.S3.Enabled {
		if cfg.Publish.S3.Bucket == "" {
			return fmt.Errorf("publish.s3.bucket is required when S3 is enabled")
		}
		if cfg.Publish.S3.Region == "" {
			return fmt.Errorf("publish.s3.region is required when S3 is enabled")
		}
		if cfg.Publish.S3.Key == "" {
			return fmt.Errorf("publish.s3.key is required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Publish.S3.Bucket) {
			return fmt.Errorf("publish.s3.bucket '%s' is invalid", cfg.Publish.S3.Bucket)
		}
	}

	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) url", field)
	}
	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
