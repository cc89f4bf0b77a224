// Package config loads pacelog settings from defaults, an optional YAML file
// and PACELOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidThreshold   = errors.New("outlier threshold must not be negative")
	ErrInvalidSpacingMode = errors.New("spacing mode must be literal or corrected")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("log format must be text or json")
	ErrEmptyOutput        = errors.New("diagnostics output must not be empty")
)

const (
	envPrefix      = "PACELOG"
	configName     = "pacelog"
	configType     = "yaml"
	systemConfDir  = "/etc/pacelog"
	localConfigDir = "./config"
)

// Config holds all pacelog configuration.
type Config struct {
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

// AnalysisConfig controls the reconciliation engine.
type AnalysisConfig struct {
	SpacingMode      string `mapstructure:"spacing_mode"`
	OutlierThreshold int64  `mapstructure:"outlier_threshold"`
	Sanitize         bool   `mapstructure:"sanitize"`
	Strict           bool   `mapstructure:"strict"`
}

// DiagnosticsConfig controls the anomaly/outlier side channel.
type DiagnosticsConfig struct {
	// Output is stderr, stdout, log, or a file path.
	Output  string `mapstructure:"output"`
	Enabled bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry and Prometheus export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	MetricsFile  string `mapstructure:"metrics_file"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables. An
// empty configPath searches the working directory, ./config and /etc/pacelog
// for pacelog.yaml and tolerates its absence; an explicit path must exist.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath(localConfigDir)
		viperCfg.AddConfigPath(systemConfDir)
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := Validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			SpacingMode:      DefaultSpacingMode,
			OutlierThreshold: DefaultOutlierThreshold,
			Sanitize:         DefaultSanitize,
			Strict:           DefaultStrict,
		},
		Diagnostics: DiagnosticsConfig{
			Output:  DefaultDiagnosticsOutput,
			Enabled: DefaultDiagnosticsEnabled,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: DefaultOTLPEndpoint,
			MetricsFile:  DefaultMetricsFile,
			OTLPInsecure: DefaultOTLPInsecure,
		},
	}
}

func setDefaults(viperCfg *viper.Viper) {
	// Analysis defaults.
	viperCfg.SetDefault("analysis.sanitize", DefaultSanitize)
	viperCfg.SetDefault("analysis.strict", DefaultStrict)
	viperCfg.SetDefault("analysis.outlier_threshold", DefaultOutlierThreshold)
	viperCfg.SetDefault("analysis.spacing_mode", DefaultSpacingMode)

	// Diagnostics defaults.
	viperCfg.SetDefault("diagnostics.enabled", DefaultDiagnosticsEnabled)
	viperCfg.SetDefault("diagnostics.output", DefaultDiagnosticsOutput)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.metrics_file", DefaultMetricsFile)
}

// Validate checks the configuration values.
func Validate(config *Config) error {
	if config.Analysis.OutlierThreshold < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, config.Analysis.OutlierThreshold)
	}

	switch config.Analysis.SpacingMode {
	case "literal", "corrected":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSpacingMode, config.Analysis.SpacingMode)
	}

	_, levelErr := ParseLevel(config.Logging.Level)
	if levelErr != nil {
		return levelErr
	}

	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Diagnostics.Enabled && config.Diagnostics.Output == "" {
		return ErrEmptyOutput
	}

	return nil
}
