package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/analysis"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
	"github.com/diillson/aws-cost-sentinel-go/pkg/console"
)

type fakeCostRepo struct {
	records    []entity.CostRecord
	err        error
	budgets    []entity.BudgetInfo
	start, end time.Time
}

func (f *fakeCostRepo) GetDailyCostsByService(ctx context.Context, start, end time.Time) ([]entity.CostRecord, error) {
	f.start, f.end = start, end
	return f.records, f.err
}

func (f *fakeCostRepo) GetAccountID(ctx context.Context) (string, error) {
	return "123456789012", nil
}

func (f *fakeCostRepo) GetBudgets(ctx context.Context) ([]entity.BudgetInfo, error) {
	return f.budgets, nil
}

type fakeGenerator struct {
	body   []byte
	err    error
	prompt string
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, maxTokens int) ([]byte, error) {
	f.calls++
	f.prompt = prompt
	return f.body, f.err
}

type fakeSink struct {
	verdicts []entity.AnomalyVerdict
	messages []string
}

func (f *fakeSink) Alert(ctx context.Context, verdict entity.AnomalyVerdict, message string) error {
	f.verdicts = append(f.verdicts, verdict)
	f.messages = append(f.messages, message)
	return nil
}

type fakeMetrics struct {
	cycles   int
	failures int
	outcomes []string
}

func (f *fakeMetrics) ObserveCycle(entity.CycleResult) { f.cycles++ }
func (f *fakeMetrics) ObserveCycleFailure()            { f.failures++ }
func (f *fakeMetrics) ObserveAnalysis(outcome string)  { f.outcomes = append(f.outcomes, outcome) }

type fakeExporter struct {
	calls []string
}

func (f *fakeExporter) ExportToCSV(result entity.CycleResult, filename, outputDir string) (string, error) {
	f.calls = append(f.calls, "csv")
	return outputDir + "/" + filename + ".csv", nil
}

func (f *fakeExporter) ExportToJSON(result entity.CycleResult, filename, outputDir string) (string, error) {
	f.calls = append(f.calls, "json")
	return "", errors.New("disk full")
}

func (f *fakeExporter) ExportToPDF(result entity.CycleResult, filename, outputDir string) (string, error) {
	f.calls = append(f.calls, "pdf")
	return outputDir + "/" + filename + ".pdf", nil
}

type harness struct {
	repo     *fakeCostRepo
	gen      *fakeGenerator
	sink     *fakeSink
	metrics  *fakeMetrics
	exporter *fakeExporter
	console  *console.Recorder
}

var fixedNow = time.Date(2025, 12, 12, 9, 30, 0, 0, time.UTC)

func newHarness(records []entity.CostRecord, opts MonitorOptions) (*MonitorUseCase, *harness) {
	h := &harness{
		repo:     &fakeCostRepo{records: records},
		gen:      &fakeGenerator{body: []byte(`{"output_text":"EC2 doubled"}`)},
		sink:     &fakeSink{},
		metrics:  &fakeMetrics{},
		exporter: &fakeExporter{},
		console:  console.NewRecorder(),
	}
	uc := NewMonitorUseCase(h.repo, h.gen, h.sink, h.metrics, h.exporter, h.console, opts)
	uc.SetClock(func() time.Time { return fixedNow })
	return uc, h
}

func day(date string, costs ...float64) []entity.CostRecord {
	var out []entity.CostRecord
	for i, c := range costs {
		out = append(out, entity.NewCostRecord(date, fmt.Sprintf("Service%d", i), c))
	}
	return out
}

func TestWindow(t *testing.T) {
	uc, _ := newHarness(nil, MonitorOptions{LookbackDays: 3})
	start, end := uc.Window()
	assert.Equal(t, time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 12, 0, 0, 0, 0, time.UTC), end)
}

func TestRunCycleFirstCycleHasNoBaseline(t *testing.T) {
	uc, h := newHarness(day("2025-12-11", 100, 50), MonitorOptions{})

	result, err := uc.RunCycle(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 150.0, result.NewTotal)
	assert.False(t, result.Verdict.IsAnomaly)
	assert.Nil(t, result.Verdict.Ratio)
	assert.Equal(t, "123456789012", result.AccountID)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, fixedNow, result.StartedAt)
	assert.Equal(t, time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC), h.repo.start)

	require.Len(t, h.sink.messages, 1)
	assert.Contains(t, h.sink.messages[0], "no baseline")
	assert.Zero(t, h.gen.calls)
	assert.Equal(t, []string{AnalysisSkipped}, h.metrics.outcomes)
	assert.Equal(t, 1, h.metrics.cycles)
	assert.Contains(t, h.console.Output(), "100.0000 USD")
}

func TestRunCycleSpikeTriggersAnalysis(t *testing.T) {
	uc, h := newHarness(day("2025-12-11", 100, 50), MonitorOptions{})

	result, err := uc.RunCycle(context.Background(), 100)
	require.NoError(t, err)

	require.NotNil(t, result.Verdict.Ratio)
	assert.InDelta(t, 1.5, *result.Verdict.Ratio, 1e-9)
	assert.True(t, result.Verdict.IsAnomaly)
	assert.Equal(t, 1, h.gen.calls)
	assert.Contains(t, h.gen.prompt, "=== COST_ROWS_JSON START ===")
	assert.Equal(t, analysis.WrapReport("EC2 doubled"), result.Report)
	assert.Equal(t, []string{AnalysisOK}, h.metrics.outcomes)
	assert.Contains(t, h.console.Output(), "BOX: AI Analysis")
}

func TestRunCycleAnalyzeModes(t *testing.T) {
	tests := []struct {
		mode     string
		previous float64
		calls    int
	}{
		{types.AnalyzeOff, 10, 0},
		{types.AnalyzeAnomaly, 150, 0},
		{types.AnalyzeAnomaly, 10, 1},
		{types.AnalyzeAlways, 150, 1},
		{types.AnalyzeAlways, 0, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.mode, tt.previous), func(t *testing.T) {
			uc, h := newHarness(day("2025-12-11", 150), MonitorOptions{Analyze: tt.mode})
			_, err := uc.RunCycle(context.Background(), tt.previous)
			require.NoError(t, err)
			assert.Equal(t, tt.calls, h.gen.calls)
		})
	}
}

func TestRunCycleWithoutGenerator(t *testing.T) {
	h := &harness{repo: &fakeCostRepo{records: day("2025-12-11", 150)}, sink: &fakeSink{}, console: console.NewRecorder()}
	uc := NewMonitorUseCase(h.repo, nil, h.sink, nil, nil, h.console, MonitorOptions{Analyze: types.AnalyzeAlways})

	result, err := uc.RunCycle(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Report, "[AI analysis failed] OPENAI_API_KEY is not set"))
}

func TestRunCycleGenerationFailureKeepsCycle(t *testing.T) {
	uc, h := newHarness(day("2025-12-11", 150), MonitorOptions{Analyze: types.AnalyzeAlways})
	h.gen.err = errors.New("connection reset")

	result, err := uc.RunCycle(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 150.0, result.NewTotal)
	assert.True(t, strings.HasPrefix(result.Report, "[AI analysis failed]"))
	assert.Contains(t, result.Report, "connection reset")
	assert.Equal(t, []string{AnalysisFailed}, h.metrics.outcomes)
}

func TestRunCycleMissingKeyFromGenerator(t *testing.T) {
	uc, h := newHarness(day("2025-12-11", 150), MonitorOptions{Analyze: types.AnalyzeAlways})
	h.gen.err = fmt.Errorf("generate: %w", types.ErrMissingAPIKey)

	result, err := uc.RunCycle(context.Background(), 100)
	require.NoError(t, err)
	assert.Contains(t, result.Report, "OPENAI_API_KEY is not set")
}

func TestRunCycleBillingFailure(t *testing.T) {
	uc, h := newHarness(nil, MonitorOptions{})
	h.repo.err = errors.New("throttled")

	_, err := uc.RunCycle(context.Background(), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Equal(t, 1, h.metrics.failures)
	assert.Zero(t, h.metrics.cycles)
	assert.Empty(t, h.sink.messages)
}

func TestRunCycleAbsentCostsAreSkipped(t *testing.T) {
	records := append(day("2025-12-11", 40), entity.CostRecord{Date: "2025-12-11", Service: "Broken"})
	uc, _ := newHarness(records, MonitorOptions{})

	result, err := uc.RunCycle(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.NewTotal)
	assert.Equal(t, 1, result.Stats.Count)
}

func TestRunCycleUsesLatestDay(t *testing.T) {
	records := append(day("2025-12-10", 100), day("2025-12-11", 300)...)
	uc, _ := newHarness(records, MonitorOptions{LookbackDays: 2})

	result, err := uc.RunCycle(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 300.0, result.NewTotal)
	assert.Nil(t, result.Verdict.Ratio)
	assert.Len(t, result.Daily, 2)
}

func TestRunCycleSeedPreviousOnlyOnFirstCycle(t *testing.T) {
	records := append(day("2025-12-10", 100), day("2025-12-11", 300)...)
	uc, _ := newHarness(records, MonitorOptions{LookbackDays: 2, SeedPrevious: true})

	first, err := uc.RunCycle(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, first.Verdict.Ratio)
	assert.InDelta(t, 3.0, *first.Verdict.Ratio, 1e-9)
	assert.True(t, first.Verdict.IsAnomaly)

	second, err := uc.RunCycle(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, second.Verdict.Ratio)
}

func TestRunCycleBudgetsAndExports(t *testing.T) {
	uc, h := newHarness(day("2025-12-11", 150), MonitorOptions{
		Budgets:    true,
		ReportName: "cost",
		ReportType: []string{"csv", "json", "pdf", "xlsx"},
		Dir:        "/tmp/reports",
	})
	h.repo.budgets = []entity.BudgetInfo{{Name: "monthly", Limit: 1000, Actual: 250, Forecast: 900}}

	result, err := uc.RunCycle(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, h.repo.budgets, result.Budgets)
	assert.Equal(t, []string{"csv", "json", "pdf"}, h.exporter.calls)

	out := h.console.Output()
	assert.Contains(t, out, "SUCCESS: Successfully exported to csv: /tmp/reports/cost.csv")
	assert.Contains(t, out, "ERROR: Failed to export to json: disk full")
	assert.Contains(t, out, "WARNING: Unknown report type 'xlsx'")
}
