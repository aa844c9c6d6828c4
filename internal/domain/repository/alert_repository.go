package repository

import (
	"context"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
)

// AlertSink delivers the verdict of every cycle.
type AlertSink interface {
	Alert(ctx context.Context, verdict entity.AnomalyVerdict, message string) error
}

// MetricsRecorder receives cycle outcomes for instrumentation.
type MetricsRecorder interface {
	ObserveCycle(result entity.CycleResult)
	ObserveCycleFailure()
	ObserveAnalysis(outcome string)
}
