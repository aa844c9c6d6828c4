package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFileFormats(t *testing.T) {
	t.Setenv("SENTINEL_TEST_KEY", "sk-test")

	files := map[string]string{
		"config.toml": `
profile = "billing"
threshold = 2.0
interval = "15m"
tag = ["Team=FinOps"]
analyze = "always"
openai_api_key = "${SENTINEL_TEST_KEY}"
`,
		"config.yaml": `
profile: billing
threshold: 2.0
interval: 15m
tag:
  - Team=FinOps
analyze: always
openai_api_key: ${SENTINEL_TEST_KEY}
`,
		"config.json": `{
  "profile": "billing",
  "threshold": 2.0,
  "interval": "15m",
  "tag": ["Team=FinOps"],
  "analyze": "always",
  "openai_api_key": "${SENTINEL_TEST_KEY}"
}`,
	}

	repo := NewConfigRepository()
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := repo.LoadConfigFile(writeFile(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, "billing", cfg.Profile)
			assert.Equal(t, 2.0, cfg.Threshold)
			assert.Equal(t, "15m", cfg.Interval)
			assert.Equal(t, []string{"Team=FinOps"}, cfg.Tag)
			assert.Equal(t, "always", cfg.Analyze)
			assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
		})
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "error accessing config file")

	_, err = repo.LoadConfigFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = repo.LoadConfigFile(writeFile(t, "config.ini", "threshold=2"))
	assert.ErrorContains(t, err, "unsupported config file format")

	_, err = repo.LoadConfigFile(writeFile(t, "config.json", "{"))
	assert.ErrorContains(t, err, "error parsing JSON file")
}

func TestMergeConfigRespectsExplicitFlags(t *testing.T) {
	args := &types.CLIArgs{
		Threshold: 1.5,
		Interval:  types.DefaultInterval,
		Analyze:   types.AnalyzeAnomaly,
		Changed:   map[string]bool{"threshold": true},
	}
	cfg := &types.Config{Threshold: 3, Interval: "10m", Analyze: "off", Budgets: true}

	require.NoError(t, types.MergeConfig(args, cfg))
	assert.Equal(t, 1.5, args.Threshold)
	assert.Equal(t, 10*time.Minute, args.Interval)
	assert.Equal(t, types.AnalyzeOff, args.Analyze)
	assert.True(t, args.Budgets)

	assert.Error(t, types.MergeConfig(args, &types.Config{Interval: "soon"}))
	assert.NoError(t, types.MergeConfig(args, nil))
}

func TestValidateArgs(t *testing.T) {
	args := &types.CLIArgs{Analyze: " Always ", Interval: time.Hour}
	require.NoError(t, args.Validate())
	assert.Equal(t, types.AnalyzeAlways, args.Analyze)
	assert.Equal(t, types.DefaultLookbackDays, args.LookbackDays)
	assert.Equal(t, types.DefaultRegion, args.Region)

	args = &types.CLIArgs{Analyze: "sometimes", Interval: time.Hour}
	assert.ErrorIs(t, args.Validate(), types.ErrInvalidAnalyzeMode)

	args = &types.CLIArgs{Analyze: "off", Interval: time.Second}
	assert.ErrorIs(t, args.Validate(), types.ErrInvalidInterval)
}
