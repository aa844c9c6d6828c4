package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/analysis"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/anomaly"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/repository"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
)

// Resultados de análise registrados nas métricas.
const (
	AnalysisOK      = "ok"
	AnalysisFailed  = "failed"
	AnalysisSkipped = "skipped"
)

const analysisFailedPrefix = "[AI analysis failed]"

// MonitorOptions controla o comportamento de cada ciclo.
type MonitorOptions struct {
	Threshold    float64
	LookbackDays int
	Analyze      string
	Language     string
	MaxTokens    int
	ReportName   string
	ReportType   []string
	Dir          string
	Budgets      bool
	SeedPrevious bool
}

// MonitorUseCase executa um ciclo de monitoramento: busca os custos, aplica a
// regra de anomalia, alerta e, se configurado, pede a análise ao gerador.
type MonitorUseCase struct {
	costRepo   repository.CostRepository
	generator  repository.TextGenerator
	alertSink  repository.AlertSink
	metrics    repository.MetricsRecorder
	exportRepo repository.ExportRepository
	console    types.ConsoleInterface
	opts       MonitorOptions

	now    func() time.Time
	cycles atomic.Int64
}

// NewMonitorUseCase creates a new monitor use case. generator may be nil when
// no API key is configured; metrics may be nil.
func NewMonitorUseCase(
	costRepo repository.CostRepository,
	generator repository.TextGenerator,
	alertSink repository.AlertSink,
	metrics repository.MetricsRecorder,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
	opts MonitorOptions,
) *MonitorUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if opts.Threshold <= 0 {
		opts.Threshold = anomaly.DefaultThreshold
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = types.DefaultLookbackDays
	}
	if opts.Analyze == "" {
		opts.Analyze = types.AnalyzeAnomaly
	}
	if opts.Language == "" {
		opts.Language = analysis.DefaultLanguage
	}

	return &MonitorUseCase{
		costRepo:   costRepo,
		generator:  generator,
		alertSink:  alertSink,
		metrics:    metrics,
		exportRepo: exportRepo,
		console:    console,
		opts:       opts,
		now:        time.Now,
	}
}

// SetClock substitui o relógio usado para calcular a janela de consulta.
func (uc *MonitorUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// Window returns the query range [today - lookback, today) in UTC.
func (uc *MonitorUseCase) Window() (time.Time, time.Time) {
	now := uc.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -uc.opts.LookbackDays), end
}

// RunCycle runs one monitoring cycle against the carried previous total. On a
// billing failure it returns an error and the caller keeps its previous total;
// otherwise result.NewTotal is the value to carry into the next cycle.
func (uc *MonitorUseCase) RunCycle(ctx context.Context, previous float64) (entity.CycleResult, error) {
	start, end := uc.Window()
	result := entity.CycleResult{
		ID:        uuid.NewString(),
		StartedAt: uc.now(),
		Start:     start,
		End:       end,
	}

	uc.console.Println()
	uc.console.LogInfo("Cost check %s (window %s to %s)",
		result.StartedAt.Format("2006-01-02 15:04:05"), start.Format("2006-01-02"), end.Format("2006-01-02"))

	status := uc.console.Status("Fetching cost data...")
	records, err := uc.costRepo.GetDailyCostsByService(ctx, start, end)
	status.Stop()
	if err != nil {
		uc.metrics.ObserveCycleFailure()
		return entity.CycleResult{}, fmt.Errorf("cost check %s failed: %w", result.ID, err)
	}
	firstCycle := uc.cycles.Add(1) == 1

	result.AccountID = uc.accountID(ctx)
	result.Records = records
	result.Daily = entity.DailyTotals(records)
	result.Stats = analysis.ComputeSummaryStats(records)

	if len(records) == 0 {
		uc.console.LogWarning("No cost data returned for this window")
	} else {
		uc.console.Print(uc.costTable(records).Render())
		uc.displayTrend(result.Daily)
	}

	current := 0.0
	if n := len(result.Daily); n > 0 {
		current = result.Daily[n-1].Total
	}
	if firstCycle && uc.opts.SeedPrevious && previous == 0 && len(result.Daily) > 1 {
		previous = result.Daily[len(result.Daily)-2].Total
		uc.console.LogInfo("Seeded previous total from %s: %.4f USD", result.Daily[len(result.Daily)-2].Date, previous)
	}

	result.Verdict = anomaly.Detect(current, previous, uc.opts.Threshold)
	result.Message = anomaly.Message(result.Verdict)
	result.NewTotal = current

	if err := uc.alertSink.Alert(ctx, result.Verdict, result.Message); err != nil {
		uc.console.LogWarning("Failed to deliver alert: %s", err)
	}

	if uc.shouldAnalyze(result.Verdict) {
		report, outcome := uc.analyze(ctx, records)
		uc.metrics.ObserveAnalysis(outcome)
		result.Report = report
		uc.console.Box("AI Analysis", report, false)
	} else {
		uc.metrics.ObserveAnalysis(AnalysisSkipped)
	}

	if uc.opts.Budgets {
		result.Budgets = uc.budgets(ctx)
	}

	uc.export(result)
	uc.metrics.ObserveCycle(result)

	return result, nil
}

func (uc *MonitorUseCase) shouldAnalyze(verdict entity.AnomalyVerdict) bool {
	switch uc.opts.Analyze {
	case types.AnalyzeAlways:
		return true
	case types.AnalyzeAnomaly:
		return verdict.IsAnomaly
	default:
		return false
	}
}

// analyze devolve o relatório embrulhado ou um texto de falha; nunca aborta o ciclo.
func (uc *MonitorUseCase) analyze(ctx context.Context, records []entity.CostRecord) (string, string) {
	if uc.generator == nil {
		return missingKeyReport(), AnalysisFailed
	}

	req := analysis.BuildRequest(records, analysis.PromptOptions{Language: uc.opts.Language})

	status := uc.console.Status("Requesting AI cost analysis...")
	body, err := uc.generator.Generate(ctx, req.Prompt, uc.opts.MaxTokens)
	status.Stop()

	if errors.Is(err, types.ErrMissingAPIKey) {
		return missingKeyReport(), AnalysisFailed
	}
	if err != nil {
		uc.console.LogError("AI analysis failed: %s", err)
		return fmt.Sprintf("%s error while calling the analysis API: %v", analysisFailedPrefix, err), AnalysisFailed
	}

	return analysis.WrapReport(analysis.ExtractResponseText(body)), AnalysisOK
}

func missingKeyReport() string {
	return analysisFailedPrefix + " OPENAI_API_KEY is not set. Export it (or set openai_api_key in the config file) to enable the analysis report."
}

func (uc *MonitorUseCase) accountID(ctx context.Context) string {
	id, err := uc.costRepo.GetAccountID(ctx)
	if err != nil {
		uc.console.LogWarning("Could not resolve account ID: %s", err)
		return "Unknown"
	}
	return id
}

func (uc *MonitorUseCase) costTable(records []entity.CostRecord) types.TableInterface {
	table := uc.console.CreateTable()
	table.AddColumn("Date")
	table.AddColumn("Service")
	table.AddColumn("Cost")

	for _, rec := range records {
		cost := "n/a"
		if rec.Cost != nil {
			cost = fmt.Sprintf("%.4f USD", *rec.Cost)
		}
		table.AddRow(rec.Date, rec.Service, cost)
	}
	return table
}

func (uc *MonitorUseCase) displayTrend(daily []entity.DailyCost) {
	if len(daily) < 2 {
		return
	}
	points := make([]types.TrendPoint, 0, len(daily))
	for _, d := range daily {
		points = append(points, types.TrendPoint{Label: d.Date, Cost: d.Total})
	}
	uc.console.DisplayTrendBars("Daily Cost Trend", points)
}

func (uc *MonitorUseCase) budgets(ctx context.Context) []entity.BudgetInfo {
	budgets, err := uc.costRepo.GetBudgets(ctx)
	if err != nil {
		uc.console.LogWarning("Could not fetch budgets: %s", err)
		return nil
	}
	if len(budgets) == 0 {
		uc.console.LogInfo("No budgets found")
		return nil
	}

	table := uc.console.CreateTable()
	table.AddColumn("Budget")
	table.AddColumn("Limit")
	table.AddColumn("Actual")
	table.AddColumn("Forecast")
	table.AddColumn("Used")
	table.AddColumn("Status")
	for _, b := range budgets {
		table.AddRow(b.Name, fmt.Sprintf("$%.2f", b.Limit), fmt.Sprintf("$%.2f", b.Actual), fmt.Sprintf("$%.2f", b.Forecast),
			fmt.Sprintf("%.1f%%", b.UsedPercent()), b.Status())
		if b.Status() != "ok" {
			uc.console.LogWarning("Budget '%s' is %s ($%.2f of $%.2f)", b.Name, b.Status(), b.Actual, b.Limit)
		}
	}
	uc.console.Print(table.Render())
	return budgets
}

func (uc *MonitorUseCase) export(result entity.CycleResult) {
	if uc.exportRepo == nil || uc.opts.ReportName == "" {
		return
	}

	for _, reportType := range uc.opts.ReportType {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportToCSV(result, uc.opts.ReportName, uc.opts.Dir)
		case "json":
			path, err = uc.exportRepo.ExportToJSON(result, uc.opts.ReportName, uc.opts.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportToPDF(result, uc.opts.ReportName, uc.opts.Dir)
		default:
			uc.console.LogWarning("Unknown report type '%s'", reportType)
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export to %s: %s", reportType, err)
		} else {
			uc.console.LogSuccess("Successfully exported to %s: %s", reportType, path)
		}
	}
}

type noopMetrics struct{}

func (noopMetrics) ObserveCycle(entity.CycleResult) {}
func (noopMetrics) ObserveCycleFailure()            {}
func (noopMetrics) ObserveAnalysis(string)          {}
