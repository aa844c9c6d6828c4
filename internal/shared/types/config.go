package types

import (
	"fmt"
	"strings"
	"time"
)

const (
	AnalyzeOff     = "off"
	AnalyzeAnomaly = "anomaly"
	AnalyzeAlways  = "always"

	DefaultInterval        = 30 * time.Minute
	DefaultLookbackDays    = 1
	DefaultRegion          = "us-east-1"
	DefaultCredentialsFile = "aws_credentials.json"
)

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Profile         string   `json:"profile" yaml:"profile" toml:"profile"`
	CredentialsFile string   `json:"credentials_file" yaml:"credentials_file" toml:"credentials_file"`
	Region          string   `json:"region" yaml:"region" toml:"region"`
	Threshold       float64  `json:"threshold" yaml:"threshold" toml:"threshold"`
	Interval        string   `json:"interval" yaml:"interval" toml:"interval"`
	LookbackDays    int      `json:"lookback_days" yaml:"lookback_days" toml:"lookback_days"`
	Tag             []string `json:"tag" yaml:"tag" toml:"tag"`
	Analyze         string   `json:"analyze" yaml:"analyze" toml:"analyze"`
	Model           string   `json:"model" yaml:"model" toml:"model"`
	MaxTokens       int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	Language        string   `json:"language" yaml:"language" toml:"language"`
	OpenAIAPIKey    string   `json:"openai_api_key" yaml:"openai_api_key" toml:"openai_api_key"`
	OpenAIBaseURL   string   `json:"openai_base_url" yaml:"openai_base_url" toml:"openai_base_url"`
	ReportName      string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType      []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir             string   `json:"dir" yaml:"dir" toml:"dir"`
	MetricsAddr     string   `json:"metrics_addr" yaml:"metrics_addr" toml:"metrics_addr"`
	Budgets         bool     `json:"budgets" yaml:"budgets" toml:"budgets"`
	SeedPrevious    bool     `json:"seed_previous" yaml:"seed_previous" toml:"seed_previous"`
}

// MergeConfig copies values from the config file into args for every flag the
// user did not set explicitly.
func MergeConfig(args *CLIArgs, cfg *Config) error {
	if cfg == nil {
		return nil
	}

	unset := func(flag string) bool { return !args.Changed[flag] }

	if unset("profile") && cfg.Profile != "" {
		args.Profile = cfg.Profile
	}
	if unset("credentials-file") && cfg.CredentialsFile != "" {
		args.CredentialsFile = cfg.CredentialsFile
	}
	if unset("region") && cfg.Region != "" {
		args.Region = cfg.Region
	}
	if unset("threshold") && cfg.Threshold > 0 {
		args.Threshold = cfg.Threshold
	}
	if unset("interval") && cfg.Interval != "" {
		d, err := time.ParseDuration(cfg.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval %q in config file: %w", cfg.Interval, err)
		}
		args.Interval = d
	}
	if unset("lookback-days") && cfg.LookbackDays > 0 {
		args.LookbackDays = cfg.LookbackDays
	}
	if unset("tag") && len(cfg.Tag) > 0 {
		args.Tag = cfg.Tag
	}
	if unset("analyze") && cfg.Analyze != "" {
		args.Analyze = cfg.Analyze
	}
	if unset("model") && cfg.Model != "" {
		args.Model = cfg.Model
	}
	if unset("max-tokens") && cfg.MaxTokens > 0 {
		args.MaxTokens = cfg.MaxTokens
	}
	if unset("language") && cfg.Language != "" {
		args.Language = cfg.Language
	}
	if unset("report-name") && cfg.ReportName != "" {
		args.ReportName = cfg.ReportName
	}
	if unset("report-type") && len(cfg.ReportType) > 0 {
		args.ReportType = cfg.ReportType
	}
	if unset("dir") && cfg.Dir != "" {
		args.Dir = cfg.Dir
	}
	if unset("metrics-addr") && cfg.MetricsAddr != "" {
		args.MetricsAddr = cfg.MetricsAddr
	}
	if unset("budgets") && cfg.Budgets {
		args.Budgets = true
	}
	if unset("seed-previous") && cfg.SeedPrevious {
		args.SeedPrevious = true
	}
	if args.OpenAIAPIKey == "" {
		args.OpenAIAPIKey = cfg.OpenAIAPIKey
	}
	if cfg.OpenAIBaseURL != "" {
		args.OpenAIBaseURL = cfg.OpenAIBaseURL
	}

	return nil
}

// Validate checks the values that cannot be corrected silently.
func (a *CLIArgs) Validate() error {
	a.Analyze = strings.ToLower(strings.TrimSpace(a.Analyze))
	switch a.Analyze {
	case AnalyzeOff, AnalyzeAnomaly, AnalyzeAlways:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAnalyzeMode, a.Analyze)
	}

	if a.Interval < time.Minute {
		return fmt.Errorf("%w: got %s", ErrInvalidInterval, a.Interval)
	}
	if a.LookbackDays <= 0 {
		a.LookbackDays = DefaultLookbackDays
	}
	if a.Region == "" {
		a.Region = DefaultRegion
	}

	return nil
}
