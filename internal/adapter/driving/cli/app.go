package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/alert"
	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/aws"
	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/credentials"
	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/export"
	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/metrics"
	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/openai"
	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driving/scheduler"
	"github.com/diillson/aws-cost-sentinel-go/internal/application/usecase"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/analysis"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/anomaly"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/repository"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
	"github.com/diillson/aws-cost-sentinel-go/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	console    types.ConsoleInterface
	configRepo repository.ConfigRepository
	version    string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, console types.ConsoleInterface, configRepo repository.ConfigRepository) *CLIApp {
	app := &CLIApp{
		console:    console,
		configRepo: configRepo,
		version:    versionStr,
	}

	rootCmd := &cobra.Command{
		Use:           "aws-cost-sentinel",
		Short:         "Watch AWS daily costs and flag day-over-day spikes",
		Version:       version.FormatVersion(),
		RunE:          app.runMonitor,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "AWS Cost Sentinel version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringP("profile", "p", "", "AWS profile to use instead of the local credentials file")
	flags.String("credentials-file", types.DefaultCredentialsFile, "Path of the JSON file holding static AWS keys")
	flags.StringP("region", "r", types.DefaultRegion, "Region for the Cost Explorer client")
	flags.Float64P("threshold", "T", anomaly.DefaultThreshold, "Ratio between today's and the previous total that counts as a spike")
	flags.DurationP("interval", "i", types.DefaultInterval, "Time between cost checks")
	flags.Int("lookback-days", types.DefaultLookbackDays, "Days of cost data fetched per check")
	flags.StringSliceP("tag", "g", nil, "Cost allocation tag filter, e.g., --tag Team=DevOps")
	flags.String("analyze", types.AnalyzeAnomaly, "When to request an AI analysis: off, anomaly, always")
	flags.String("model", openai.DefaultModel, "Model used for the AI analysis")
	flags.Int("max-tokens", openai.DefaultMaxTokens, "Maximum output tokens for the AI analysis")
	flags.String("language", analysis.DefaultLanguage, "Language the AI analysis is written in")
	flags.Bool("once", false, "Run a single check and exit")
	flags.StringP("report-name", "n", "", "Base name for the report file written after each check (without extension)")
	flags.StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.String("metrics-addr", "", "Address to expose Prometheus metrics on, e.g., :9102")
	flags.Bool("budgets", false, "Show AWS Budgets status after each check")
	flags.Bool("seed-previous", false, "Use the day before the latest one as the baseline of the first check")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "analyze",
			Short: "Run one cost check and always request the AI analysis",
			RunE:  app.runAnalyze,
		},
		&cobra.Command{
			Use:   "credentials",
			Short: "Create or replace the local AWS credentials file",
			RunE:  app.runCredentials,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				app.console.Println(fmt.Sprintf("AWS Cost Sentinel version: %s", version.FormatVersion()))
			},
		},
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs lê as flags, aplica o arquivo de configuração e valida o resultado.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()

	args := &types.CLIArgs{Changed: map[string]bool{}}
	flags.Visit(func(f *pflag.Flag) {
		args.Changed[f.Name] = true
	})

	args.ConfigFile, _ = flags.GetString("config-file")
	args.Profile, _ = flags.GetString("profile")
	args.CredentialsFile, _ = flags.GetString("credentials-file")
	args.Region, _ = flags.GetString("region")
	args.Threshold, _ = flags.GetFloat64("threshold")
	args.Interval, _ = flags.GetDuration("interval")
	args.LookbackDays, _ = flags.GetInt("lookback-days")
	args.Tag, _ = flags.GetStringSlice("tag")
	args.Analyze, _ = flags.GetString("analyze")
	args.Model, _ = flags.GetString("model")
	args.MaxTokens, _ = flags.GetInt("max-tokens")
	args.Language, _ = flags.GetString("language")
	args.Once, _ = flags.GetBool("once")
	args.ReportName, _ = flags.GetString("report-name")
	args.ReportType, _ = flags.GetStringSlice("report-type")
	args.Dir, _ = flags.GetString("dir")
	args.MetricsAddr, _ = flags.GetString("metrics-addr")
	args.Budgets, _ = flags.GetBool("budgets")
	args.SeedPrevious, _ = flags.GetBool("seed-previous")
	args.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	args.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")

	if args.ConfigFile != "" {
		cfg, err := app.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		if err := types.MergeConfig(args, cfg); err != nil {
			return nil, err
		}
	}

	if err := args.Validate(); err != nil {
		return nil, err
	}

	// Diretório padrão: diretório de trabalho atual
	if args.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		args.Dir = cwd
	} else {
		absDir, err := filepath.Abs(args.Dir)
		if err != nil {
			return nil, err
		}
		args.Dir = absDir
	}

	return args, nil
}

// runMonitor é o ponto de entrada principal: verifica os custos a cada intervalo.
func (app *CLIApp) runMonitor(cmd *cobra.Command, _ []string) error {
	displayWelcomeBanner(app.version)
	go version.CheckLatestVersion(app.version)

	args, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor, collector, err := app.buildMonitor(ctx, args)
	if err != nil {
		return err
	}
	app.serveMetrics(ctx, collector, args.MetricsAddr)

	sched, err := scheduler.NewScheduler(monitor, args.Interval, app.console)
	if err != nil {
		return err
	}

	if args.Once {
		_, err := sched.RunOnce(ctx)
		return err
	}

	return sched.Run(ctx)
}

// runAnalyze executa um único ciclo com a análise sempre habilitada.
func (app *CLIApp) runAnalyze(cmd *cobra.Command, _ []string) error {
	args, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}
	args.Analyze = types.AnalyzeAlways

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor, _, err := app.buildMonitor(ctx, args)
	if err != nil {
		return err
	}

	_, err = monitor.RunCycle(ctx, 0)
	return err
}

// runCredentials pede as chaves novamente e sobrescreve o arquivo.
func (app *CLIApp) runCredentials(cmd *cobra.Command, _ []string) error {
	args, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}

	store := credentials.NewFileStore(args.CredentialsFile, app.console)
	if _, err := store.PromptAndSave(cmd.Context()); err != nil {
		return err
	}
	app.console.LogSuccess("AWS credentials saved to '%s'", store.Path())
	return nil
}

// buildMonitor monta o caso de uso com os adaptadores configurados.
func (app *CLIApp) buildMonitor(ctx context.Context, args *types.CLIArgs) (*usecase.MonitorUseCase, *metrics.Collector, error) {
	provider, err := app.credentialProvider(ctx, args)
	if err != nil {
		return nil, nil, err
	}

	costRepo, err := aws.NewAWSRepository(provider, aws.Options{
		Region: args.Region,
		Tags:   args.Tag,
	})
	if err != nil {
		return nil, nil, err
	}

	var generator repository.TextGenerator
	if args.Analyze != types.AnalyzeOff {
		client, err := openai.NewClient(args.OpenAIAPIKey, args.Model, args.OpenAIBaseURL)
		switch {
		case errors.Is(err, types.ErrMissingAPIKey):
			app.console.LogWarning("OPENAI_API_KEY is not set; AI analysis reports will be replaced by setup instructions")
		case err != nil:
			return nil, nil, err
		default:
			generator = client
		}
	}

	collector := metrics.NewCollector(nil)

	monitor := usecase.NewMonitorUseCase(
		costRepo,
		generator,
		alert.NewConsoleSink(app.console),
		collector,
		export.NewExportRepository(),
		app.console,
		usecase.MonitorOptions{
			Threshold:    args.Threshold,
			LookbackDays: args.LookbackDays,
			Analyze:      args.Analyze,
			Language:     args.Language,
			MaxTokens:    args.MaxTokens,
			ReportName:   args.ReportName,
			ReportType:   args.ReportType,
			Dir:          args.Dir,
			Budgets:      args.Budgets,
			SeedPrevious: args.SeedPrevious,
		},
	)

	return monitor, collector, nil
}

// credentialProvider escolhe entre o arquivo local de chaves e um perfil AWS.
// O arquivo é lido (ou criado) aqui, antes do primeiro ciclo.
func (app *CLIApp) credentialProvider(ctx context.Context, args *types.CLIArgs) (repository.CredentialProvider, error) {
	if args.Profile != "" {
		app.console.LogInfo("Using AWS profile '%s'", args.Profile)
		return credentials.NewProfileProvider(args.Profile), nil
	}

	store := credentials.NewFileStore(args.CredentialsFile, app.console)
	if _, err := store.Credentials(ctx); err != nil {
		return nil, err
	}
	app.console.LogSuccess("Loaded AWS credentials from '%s'", store.Path())
	return store, nil
}

func (app *CLIApp) serveMetrics(ctx context.Context, collector *metrics.Collector, addr string) {
	if addr == "" {
		return
	}
	go func() {
		if err := collector.Serve(ctx, addr); err != nil {
			app.console.LogError("Metrics server stopped: %s", err)
		}
	}()
	app.console.LogInfo("Serving metrics on %s/metrics", addr)
}
