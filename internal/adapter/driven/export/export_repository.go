package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// ExportToCSV grava uma linha por registro de custo, seguida do resumo do ciclo.
func (r *ExportRepositoryImpl) ExportToCSV(result entity.CycleResult, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	rows := [][]string{{"Cycle ID", "Date", "Service", "Cost (USD)"}}
	for _, rec := range result.Records {
		cost := ""
		if rec.Cost != nil {
			cost = fmt.Sprintf("%.4f", *rec.Cost)
		}
		rows = append(rows, []string{result.ID, rec.Date, rec.Service, cost})
	}

	rows = append(rows,
		[]string{},
		[]string{"Daily Total", "Date", "", "Total (USD)"},
	)
	for _, d := range result.Daily {
		rows = append(rows, []string{"", d.Date, "", fmt.Sprintf("%.4f", d.Total)})
	}

	rows = append(rows,
		[]string{},
		[]string{"Verdict", "Anomaly", "Ratio", "Message"},
		[]string{"", fmt.Sprintf("%t", result.Verdict.IsAnomaly), formatRatio(result.Verdict.Ratio), result.Message},
	)

	if err := writer.WriteAll(rows); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(result entity.CycleResult, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(result entity.CycleResult, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, title)
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by AWS Cost Sentinel (Go) | %s", time.Now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Cost check %s", result.StartedAt.Format("2006-01-02 15:04:05"))), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Account ID: %s   Cycle: %s", result.AccountID, result.ID)), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	if result.Verdict.IsAnomaly {
		pdf.SetTextColor(192, 0, 0)
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.MultiCell(190, 6, tr(result.Message), "", "L", false)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.Ln(6)

	var daily strings.Builder
	for _, d := range result.Daily {
		fmt.Fprintf(&daily, "%s: $%.4f\n", d.Date, d.Total)
	}
	drawSection("Daily Totals", strings.TrimSpace(daily.String()))

	var services strings.Builder
	for _, rec := range result.Records {
		if rec.Cost == nil {
			fmt.Fprintf(&services, "%s  %s: n/a\n", rec.Date, rec.Service)
			continue
		}
		fmt.Fprintf(&services, "%s  %s: $%.4f\n", rec.Date, rec.Service, *rec.Cost)
	}
	drawSection("Cost By Service", strings.TrimSpace(services.String()))

	drawSection("Summary Statistics", fmt.Sprintf("Count: %d\nTotal: $%.4f\nMean: $%.4f\nStdev: $%.4f",
		result.Stats.Count, result.Stats.Total, result.Stats.Mean, result.Stats.Stdev))

	var budgets []string
	for _, b := range result.Budgets {
		budgets = append(budgets, fmt.Sprintf("%s: $%.2f / $%.2f (forecast $%.2f)", b.Name, b.Actual, b.Limit, b.Forecast))
	}
	drawSection("Budget Status", strings.Join(budgets, "\n"))

	drawSection("AI Analysis", cleanRichTags(result.Report))

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func formatRatio(ratio *float64) string {
	if ratio == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *ratio)
}

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
