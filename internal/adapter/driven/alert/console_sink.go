// Package alert delivers cycle verdicts to the operator.
package alert

import (
	"context"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/repository"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
)

// ConsoleSink prints anomalies as a highlighted panel and everything else as
// a single log line.
type ConsoleSink struct {
	console types.ConsoleInterface
}

// NewConsoleSink cria um ConsoleSink.
func NewConsoleSink(console types.ConsoleInterface) *ConsoleSink {
	return &ConsoleSink{console: console}
}

var _ repository.AlertSink = (*ConsoleSink)(nil)

func (s *ConsoleSink) Alert(ctx context.Context, verdict entity.AnomalyVerdict, message string) error {
	if verdict.IsAnomaly {
		s.console.Box("COST ANOMALY", message, true)
		return nil
	}
	s.console.LogInfo("%s", message)
	return nil
}
