package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/enrollpulse.log"`
}

// AnalysisConfig contains the tunable parameters of the enrollment analysis.
// ExpectedFraction is the assumed share of the population in the youngest age
// bucket; the historical default of 8% is kept but callers can override it.
type AnalysisConfig struct {
	ExpectedFraction float64 `yaml:"expected_fraction" envconfig:"EXPECTED_FRACTION" default:"0.08" validate:"gt=0,lte=1"`
	DateFormat       string  `yaml:"date_format" envconfig:"DATE_FORMAT" default:"02-01-2006" validate:"required"`
	RollingWindow    int     `yaml:"rolling_window" envconfig:"ROLLING_WINDOW" default:"7" validate:"gte=1"`
	ForecastDays     int     `yaml:"forecast_days" envconfig:"FORECAST_DAYS" default:"30" validate:"gte=1"`
	TopN             int     `yaml:"top_n" envconfig:"TOP_N" default:"10" validate:"gte=1"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from environment variables and an optional YAML
// file. Environment variables take precedence over file values.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ENROLL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs folds file configuration into the environment-derived one.
// envconfig fills every default whether or not the variable is exported, so
// a non-zero env value does not mean the operator set it; file values win
// unless the matching variable is actually present in the environment.
func mergeConfigs(fileCfg, envCfg Config) Config {
	merged := envCfg

	fileWins := func(envKey string) bool {
		_, set := os.LookupEnv(envKey)
		return !set
	}

	if fileCfg.Server.Port != 0 && fileWins("ENROLL_SERVER_PORT") {
		merged.Server.Port = fileCfg.Server.Port
	}
	if fileCfg.Server.ReadTimeout != 0 && fileWins("ENROLL_SERVER_READ_TIMEOUT") {
		merged.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if fileCfg.Server.WriteTimeout != 0 && fileWins("ENROLL_SERVER_WRITE_TIMEOUT") {
		merged.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if fileCfg.Server.IdleTimeout != 0 && fileWins("ENROLL_SERVER_IDLE_TIMEOUT") {
		merged.Server.IdleTimeout = fileCfg.Server.IdleTimeout
	}
	if fileCfg.Server.ShutdownTimeout != 0 && fileWins("ENROLL_SERVER_SHUTDOWN_TIMEOUT") {
		merged.Server.ShutdownTimeout = fileCfg.Server.ShutdownTimeout
	}
	if fileCfg.Server.RateLimit.RPS != 0 && fileWins("ENROLL_SERVER_RATE_LIMIT_RPS") {
		merged.Server.RateLimit.RPS = fileCfg.Server.RateLimit.RPS
	}
	if fileCfg.Server.RateLimit.Burst != 0 && fileWins("ENROLL_SERVER_RATE_LIMIT_BURST") {
		merged.Server.RateLimit.Burst = fileCfg.Server.RateLimit.Burst
	}
	// A false enabled flag cannot be told apart from an absent section, so
	// it is honored only when the file configures the section at all.
	if (fileCfg.Server.RateLimit.RPS != 0 || fileCfg.Server.RateLimit.Burst != 0) &&
		fileWins("ENROLL_SERVER_RATE_LIMIT_ENABLED") {
		merged.Server.RateLimit.Enabled = fileCfg.Server.RateLimit.Enabled
	}

	if fileCfg.Logging.Level != "" && fileWins("ENROLL_LOGGING_LEVEL") {
		merged.Logging.Level = fileCfg.Logging.Level
	}
	if fileCfg.Logging.Format != "" && fileWins("ENROLL_LOGGING_FORMAT") {
		merged.Logging.Format = fileCfg.Logging.Format
	}
	if fileCfg.Logging.Output != "" && fileWins("ENROLL_LOGGING_OUTPUT") {
		merged.Logging.Output = fileCfg.Logging.Output
	}
	if fileCfg.Logging.FilePath != "" && fileWins("ENROLL_LOGGING_FILE_PATH") {
		merged.Logging.FilePath = fileCfg.Logging.FilePath
	}

	if fileCfg.Analysis.ExpectedFraction != 0 && fileWins("ENROLL_ANALYSIS_EXPECTED_FRACTION") {
		merged.Analysis.ExpectedFraction = fileCfg.Analysis.ExpectedFraction
	}
	if fileCfg.Analysis.DateFormat != "" && fileWins("ENROLL_ANALYSIS_DATE_FORMAT") {
		merged.Analysis.DateFormat = fileCfg.Analysis.DateFormat
	}
	if fileCfg.Analysis.RollingWindow != 0 && fileWins("ENROLL_ANALYSIS_ROLLING_WINDOW") {
		merged.Analysis.RollingWindow = fileCfg.Analysis.RollingWindow
	}
	if fileCfg.Analysis.ForecastDays != 0 && fileWins("ENROLL_ANALYSIS_FORECAST_DAYS") {
		merged.Analysis.ForecastDays = fileCfg.Analysis.ForecastDays
	}
	if fileCfg.Analysis.TopN != 0 && fileWins("ENROLL_ANALYSIS_TOP_N") {
		merged.Analysis.TopN = fileCfg.Analysis.TopN
	}

	if fileCfg.Paths.DataDir != "" && fileWins("ENROLL_PATHS_DATA_DIR") {
		merged.Paths.DataDir = fileCfg.Paths.DataDir
	}
	if fileCfg.Paths.ReportsDir != "" && fileWins("ENROLL_PATHS_REPORTS_DIR") {
		merged.Paths.ReportsDir = fileCfg.Paths.ReportsDir
	}
	if fileCfg.Paths.LogsDir != "" && fileWins("ENROLL_PATHS_LOGS_DIR") {
		merged.Paths.LogsDir = fileCfg.Paths.LogsDir
	}

	return merged
}

// validate validates the configuration values
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validate := validator.New()
	if err := validate.Struct(c.Analysis); err != nil {
		return fmt.Errorf("invalid analysis config: %w", err)
	}

	return nil
}

// getConfigFilePath returns the path to the configuration file
func getConfigFilePath() string {
	if path := os.Getenv("ENROLL_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}
