package types

import "errors"

var (
	ErrMissingAPIKey      = errors.New("OPENAI_API_KEY is not set. Export it (or set openai_api_key in the config file) and try again")
	ErrMissingCredentials = errors.New("no AWS credentials available. Run `aws-cost-sentinel credentials` or configure an AWS profile")
	ErrInvalidAnalyzeMode = errors.New("invalid analyze mode, expected one of: off, anomaly, always")
	ErrInvalidInterval    = errors.New("polling interval must be at least one minute")
)
