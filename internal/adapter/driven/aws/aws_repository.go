package aws

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/repository"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
)

const (
	costMetric     = "UnblendedCost"
	dateLayout     = "2006-01-02"
	defaultTimeout = 30 * time.Second
)

type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type budgetsAPI interface {
	DescribeBudgets(ctx context.Context, params *budgets.DescribeBudgetsInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error)
}

// Options configura o AWSRepository.
type Options struct {
	Region  string
	Tags    []string
	Timeout time.Duration
}

// AWSRepositoryImpl implementa o CostRepository sobre o Cost Explorer.
// Os clientes são criados na primeira chamada e reutilizados.
type AWSRepositoryImpl struct {
	creds  repository.CredentialProvider
	opts   Options
	filter *ceTypes.Expression

	mu        sync.Mutex
	ce        costExplorerAPI
	sts       stsAPI
	budgets   budgetsAPI
	accountID string
}

// NewAWSRepository cria uma nova implementação do CostRepository.
// As credenciais são lidas uma única vez, quando os clientes são criados.
func NewAWSRepository(creds repository.CredentialProvider, opts Options) (repository.CostRepository, error) {
	if opts.Region == "" {
		opts.Region = types.DefaultRegion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	filter, err := parseTagFilter(opts.Tags)
	if err != nil {
		return nil, err
	}

	return &AWSRepositoryImpl{creds: creds, opts: opts, filter: filter}, nil
}

func (r *AWSRepositoryImpl) ensureClients(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ce != nil {
		return nil
	}

	cfg, err := r.loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	r.ce = costexplorer.NewFromConfig(cfg)
	r.sts = sts.NewFromConfig(cfg)
	r.budgets = budgets.NewFromConfig(cfg)
	return nil
}

func (r *AWSRepositoryImpl) loadAWSConfig(ctx context.Context) (aws.Config, error) {
	creds, err := r.creds.Credentials(ctx)
	if err != nil {
		return aws.Config{}, err
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(r.opts.Region)}
	switch {
	case creds.IsStatic():
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, "")))
	case creds.Profile != "":
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(creds.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		if creds.Profile != "" {
			return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %s: %w", creds.Profile, err)
		}
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// GetDailyCostsByService consulta o custo diário por serviço no intervalo [start, end).
func (r *AWSRepositoryImpl) GetDailyCostsByService(ctx context.Context, start, end time.Time) ([]entity.CostRecord, error) {
	if err := r.ensureClients(ctx); err != nil {
		return nil, err
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(start.Format(dateLayout)),
			End:   aws.String(end.Format(dateLayout)),
		},
		Granularity: ceTypes.GranularityDaily,
		Metrics:     []string{costMetric},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
		Filter: r.filter,
	}

	var records []entity.CostRecord
	for {
		callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		result, err := r.ce.GetCostAndUsage(callCtx, input)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to get daily cost by service: %w", err)
		}

		records = append(records, flattenResults(result.ResultsByTime)...)

		if aws.ToString(result.NextPageToken) == "" {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	return records, nil
}

// flattenResults converte o resultado aninhado (data -> serviço -> valor) em
// registros. Valores ilegíveis viram custo ausente.
func flattenResults(results []ceTypes.ResultByTime) []entity.CostRecord {
	var records []entity.CostRecord
	for _, day := range results {
		var date string
		if day.TimePeriod != nil {
			date = aws.ToString(day.TimePeriod.Start)
		}

		for _, group := range day.Groups {
			service := "Unknown"
			if len(group.Keys) > 0 && group.Keys[0] != "" {
				service = group.Keys[0]
			}

			record := entity.CostRecord{Date: date, Service: service}
			if metric, ok := group.Metrics[costMetric]; ok && metric.Amount != nil {
				if cost, err := strconv.ParseFloat(strings.TrimSpace(*metric.Amount), 64); err == nil {
					record.Cost = &cost
				}
			}
			records = append(records, record)
		}
	}
	return records
}

func (r *AWSRepositoryImpl) GetAccountID(ctx context.Context) (string, error) {
	if err := r.ensureClients(ctx); err != nil {
		return "", err
	}

	r.mu.Lock()
	cached := r.accountID
	r.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	result, err := r.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting account ID: %w", err)
	}

	accountID := aws.ToString(result.Account)
	r.mu.Lock()
	r.accountID = accountID
	r.mu.Unlock()
	return accountID, nil
}

func (r *AWSRepositoryImpl) GetBudgets(ctx context.Context) ([]entity.BudgetInfo, error) {
	accountID, err := r.GetAccountID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := r.budgets.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(accountID),
	})
	if err != nil {
		return nil, fmt.Errorf("error describing budgets: %w", err)
	}

	budgetsData := []entity.BudgetInfo{}
	for _, budget := range result.Budgets {
		b := entity.BudgetInfo{Name: aws.ToString(budget.BudgetName)}
		if budget.BudgetLimit != nil {
			b.Limit = parseAmount(budget.BudgetLimit.Amount)
		}
		if spend := budget.CalculatedSpend; spend != nil {
			if spend.ActualSpend != nil {
				b.Actual = parseAmount(spend.ActualSpend.Amount)
			}
			if spend.ForecastedSpend != nil {
				b.Forecast = parseAmount(spend.ForecastedSpend.Amount)
			}
		}
		budgetsData = append(budgetsData, b)
	}

	return budgetsData, nil
}

func parseAmount(amount *string) float64 {
	v, _ := strconv.ParseFloat(aws.ToString(amount), 64)
	return v
}

func parseTagFilter(tags []string) (*ceTypes.Expression, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	var expressions []ceTypes.Expression
	for _, t := range tags {
		parts := strings.SplitN(t, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid tag format: %s", t)
		}
		expressions = append(expressions, ceTypes.Expression{
			Tags: &ceTypes.TagValues{
				Key:    aws.String(parts[0]),
				Values: []string{parts[1]},
			},
		})
	}

	if len(expressions) == 1 {
		return &expressions[0], nil
	}

	return &ceTypes.Expression{And: expressions}, nil
}
