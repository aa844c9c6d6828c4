package repository

import (
	"context"
	"time"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
)

// CostRepository defines the interface for billing API interactions.
type CostRepository interface {
	// GetDailyCostsByService returns one record per (date, service) for [start, end).
	GetDailyCostsByService(ctx context.Context, start, end time.Time) ([]entity.CostRecord, error)
	GetAccountID(ctx context.Context) (string, error)
	GetBudgets(ctx context.Context) ([]entity.BudgetInfo, error)
}

// CredentialProvider supplies the billing client credentials. It is read once
// when the client is built.
type CredentialProvider interface {
	Credentials(ctx context.Context) (entity.Credentials, error)
}
