package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/credentials"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
	"github.com/diillson/aws-cost-sentinel-go/pkg/console"
)

func newTestApp(t *testing.T) (*CLIApp, *console.Recorder) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	rec := console.NewRecorder()
	return NewCLIApp("1.0.0", rec, config.NewConfigRepository()), rec
}

func TestParseArgsDefaults(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, app.rootCmd.ParseFlags(nil))

	args, err := app.parseArgs(app.rootCmd)
	require.NoError(t, err)

	assert.Equal(t, 1.5, args.Threshold)
	assert.Equal(t, 30*time.Minute, args.Interval)
	assert.Equal(t, types.AnalyzeAnomaly, args.Analyze)
	assert.Equal(t, types.DefaultRegion, args.Region)
	assert.Equal(t, types.DefaultCredentialsFile, args.CredentialsFile)
	assert.Equal(t, "Korean", args.Language)
	assert.Equal(t, []string{"csv"}, args.ReportType)
	assert.True(t, filepath.IsAbs(args.Dir))
	assert.Empty(t, args.Changed)
}

func TestParseArgsConfigFileAndFlags(t *testing.T) {
	app, _ := newTestApp(t)

	cfgPath := filepath.Join(t.TempDir(), "sentinel.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
region: eu-west-1
threshold: 2.0
interval: 45m
analyze: always
openai_api_key: sk-from-file
`), 0o600))

	require.NoError(t, app.rootCmd.ParseFlags([]string{"--config-file", cfgPath, "--region", "us-west-2", "--dir", "reports"}))

	args, err := app.parseArgs(app.rootCmd)
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", args.Region)
	assert.Equal(t, 2.0, args.Threshold)
	assert.Equal(t, 45*time.Minute, args.Interval)
	assert.Equal(t, types.AnalyzeAlways, args.Analyze)
	assert.Equal(t, "sk-from-file", args.OpenAIAPIKey)
	assert.True(t, args.Changed["region"])
	assert.Equal(t, "reports", filepath.Base(args.Dir))
	assert.True(t, filepath.IsAbs(args.Dir))
}

func TestParseArgsEnvKeyWinsOverFile(t *testing.T) {
	app, _ := newTestApp(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfgPath := filepath.Join(t.TempDir(), "sentinel.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"openai_api_key": "sk-from-file"}`), 0o600))
	require.NoError(t, app.rootCmd.ParseFlags([]string{"-C", cfgPath}))

	args, err := app.parseArgs(app.rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", args.OpenAIAPIKey)
}

func TestParseArgsValidation(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, app.rootCmd.ParseFlags([]string{"--analyze", "sometimes"}))
	_, err := app.parseArgs(app.rootCmd)
	assert.ErrorIs(t, err, types.ErrInvalidAnalyzeMode)

	app, _ = newTestApp(t)
	require.NoError(t, app.rootCmd.ParseFlags([]string{"--interval", "10s"}))
	_, err = app.parseArgs(app.rootCmd)
	assert.ErrorIs(t, err, types.ErrInvalidInterval)
}

func TestCredentialsCommand(t *testing.T) {
	app, rec := newTestApp(t)
	rec.Answers["AWS Access Key ID"] = "AKIAEXAMPLE"
	rec.Answers["AWS Secret Access Key"] = "secret"

	path := filepath.Join(t.TempDir(), "creds", "aws_credentials.json")
	app.rootCmd.SetArgs([]string{"credentials", "--credentials-file", path})
	require.NoError(t, app.Execute())

	creds, err := credentials.NewFileStore(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
	assert.Contains(t, rec.Output(), "AWS credentials saved to")
}

func TestVersionCommand(t *testing.T) {
	app, rec := newTestApp(t)
	app.rootCmd.SetArgs([]string{"version"})
	require.NoError(t, app.Execute())
	assert.Contains(t, rec.Output(), "AWS Cost Sentinel version:")
}

func TestCredentialProviderUsesProfile(t *testing.T) {
	app, rec := newTestApp(t)
	provider, err := app.credentialProvider(context.Background(), &types.CLIArgs{Profile: "billing"})
	require.NoError(t, err)

	creds, err := provider.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "billing", creds.Profile)
	assert.Contains(t, rec.Output(), "Using AWS profile 'billing'")
}

func TestCredentialProviderLoadsFile(t *testing.T) {
	app, rec := newTestApp(t)
	path := filepath.Join(t.TempDir(), "aws_credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"AWS_ACCESS_KEY": "AKIA", "AWS_SECRET_KEY": "s3cr3t"}`), 0o600))

	_, err := app.credentialProvider(context.Background(), &types.CLIArgs{CredentialsFile: path})
	require.NoError(t, err)
	assert.Contains(t, rec.Output(), "Loaded AWS credentials")
}
