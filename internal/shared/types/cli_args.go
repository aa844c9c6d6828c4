package types

import "time"

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile      string
	Profile         string
	CredentialsFile string
	Region          string
	Threshold       float64
	Interval        time.Duration
	LookbackDays    int
	Tag             []string
	Analyze         string
	Model           string
	MaxTokens       int
	Language        string
	Once            bool
	ReportName      string
	ReportType      []string
	Dir             string
	MetricsAddr     string
	Budgets         bool
	SeedPrevious    bool
	OpenAIAPIKey    string
	OpenAIBaseURL   string

	// Changed records which flags were set explicitly on the command line.
	Changed map[string]bool
}
