package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Metric is a named headline figure, e.g. total revenue.
type Metric struct {
	Name        string  `mapstructure:"name" yaml:"name"`
	Column      string  `mapstructure:"column" yaml:"column"`
	Aggregation string  `mapstructure:"aggregation" yaml:"aggregation"`
	Scale       float64 `mapstructure:"scale" yaml:"scale,omitempty"`
	Unit        string  `mapstructure:"unit" yaml:"unit,omitempty"`
}

// Global configuration structure.
type Global struct {
	CorrelationMethod  string  `mapstructure:"correlation_method" yaml:"correlation_method"`
	TopN               int     `mapstructure:"top_n" yaml:"top_n"`
	Alpha              float64 `mapstructure:"alpha" yaml:"alpha"`
	MaxCodeCardinality int     `mapstructure:"max_code_cardinality" yaml:"max_code_cardinality"`

	// Loading
	MaxRows    int  `mapstructure:"max_rows" yaml:"max_rows"`
	SampleRows int  `mapstructure:"sample_rows" yaml:"sample_rows"`
	AutoLocale bool `mapstructure:"auto_locale" yaml:"auto_locale"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// HTTP service
	ServerAddr        string `mapstructure:"server_addr" yaml:"server_addr"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
	MaxUploadMB       int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	Metrics []Metric `mapstructure:"metrics" yaml:"metrics,omitempty"`
}

// Dir returns ~/.statloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".statloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.statloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		CorrelationMethod: "pearson",
		TopN:              3,
		Alpha:             0.05,
		SampleRows:        5,
		LogLevel:          "info",
		ServerAddr:        ":8080",
		RequestTimeoutSec: 30,
		MaxUploadMB:       32,
	}
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is read first and never overrides variables already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STATLOOM")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("correlation_method", d.CorrelationMethod)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("alpha", d.Alpha)
	v.SetDefault("max_code_cardinality", d.MaxCodeCardinality)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("auto_locale", d.AutoLocale)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("server_addr", d.ServerAddr)
	v.SetDefault("request_timeout_sec", d.RequestTimeoutSec)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a malformed one is not.
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges.
func (c *Global) Validate() error {
	switch strings.ToLower(c.CorrelationMethod) {
	case "", "pearson", "spearman", "kendall":
	default:
		return fmt.Errorf("invalid correlation_method: %s (use pearson, spearman or kendall)", c.CorrelationMethod)
	}
	if c.TopN < 0 {
		return fmt.Errorf("invalid top_n: %d", c.TopN)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("invalid alpha: %v (must be between 0 and 1)", c.Alpha)
	}
	if c.MaxRows < 0 || c.SampleRows < 0 || c.MaxCodeCardinality < 0 {
		return fmt.Errorf("max_rows, sample_rows and max_code_cardinality must not be negative")
	}
	if c.RequestTimeoutSec <= 0 || c.MaxUploadMB <= 0 {
		return fmt.Errorf("request_timeout_sec and max_upload_mb must be positive")
	}
	for i, m := range c.Metrics {
		if m.Column == "" {
			return fmt.Errorf("metrics[%d]: column is required", i)
		}
		switch strings.ToLower(m.Aggregation) {
		case "", "sum", "mean":
		default:
			return fmt.Errorf("metrics[%d]: invalid aggregation %q (use sum or mean)", i, m.Aggregation)
		}
	}
	return nil
}

// Set parses val into the field named by key.
func (c *Global) Set(key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "correlation_method":
		m := strings.ToLower(val)
		switch m {
		case "pearson", "spearman", "kendall":
			c.CorrelationMethod = m
		default:
			return fmt.Errorf("invalid correlation_method: %s (use pearson, spearman or kendall)", val)
		}
	case "top_n", "max_rows", "sample_rows", "max_code_cardinality", "request_timeout_sec", "max_upload_mb":
		i, err := atoi()
		if err != nil {
			return err
		}
		switch key {
		case "top_n":
			c.TopN = i
		case "max_rows":
			c.MaxRows = i
		case "sample_rows":
			c.SampleRows = i
		case "max_code_cardinality":
			c.MaxCodeCardinality = i
		case "request_timeout_sec":
			c.RequestTimeoutSec = i
		case "max_upload_mb":
			c.MaxUploadMB = i
		}
	case "alpha":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f >= 1 {
			return fmt.Errorf("invalid float for alpha: %v", val)
		}
		c.Alpha = f
	case "auto_locale":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for auto_locale: %w", err)
		}
		c.AutoLocale = b
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "server_addr":
		c.ServerAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return c.Validate()
}
