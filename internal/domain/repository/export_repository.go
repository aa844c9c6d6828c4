package repository

import (
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportToCSV(result entity.CycleResult, filename string, outputDir string) (string, error)
	ExportToJSON(result entity.CycleResult, filename string, outputDir string) (string, error)
	ExportToPDF(result entity.CycleResult, filename string, outputDir string) (string, error)
}
