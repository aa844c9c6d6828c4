package console

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
)

// ErrNotInteractive is returned by Prompt when stdin is not a terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal")

// Console é uma implementação do ConsoleInterface sobre o pterm. Fora de um
// terminal (serviço, cron, pipe) os spinners viram linhas de log e Prompt falha.
type Console struct {
	interactive bool
}

// NewConsole cria um novo Console, detectando se stdout e stdin são terminais.
func NewConsole() *Console {
	return &Console{
		interactive: isTerminal(os.Stdout) && isTerminal(os.Stdin),
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle; spinner é nil fora de um terminal.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status inicia um spinner com a mensagem, ou apenas a registra fora de um terminal.
func (c *Console) Status(message string) types.StatusHandle {
	if !c.interactive {
		pterm.Info.Println(message)
		return &statusHandle{}
	}
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

func (t *Table) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, row)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	data := pterm.TableData{t.columns}
	data = append(data, t.rows...)

	rendered, _ := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data).
		Srender()
	return rendered
}

// Box exibe um painel com título; alert destaca o painel em vermelho.
func (c *Console) Box(title, content string, alert bool) {
	style := pterm.NewStyle(pterm.FgCyan)
	if alert {
		style = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	}
	fmt.Println(pterm.DefaultBox.WithTitle(title).WithBoxStyle(style).Sprint(content))
}

// Prompt lê um valor do operador; secret mascara a digitação.
func (c *Console) Prompt(label string, secret bool) (string, error) {
	if !c.interactive {
		return "", fmt.Errorf("cannot ask for %s: %w", label, ErrNotInteractive)
	}
	input := pterm.DefaultInteractiveTextInput
	if secret {
		input = *input.WithMask("*")
	}
	return input.Show(label)
}

// trend is the direction of a day-over-day change.
type trend int

const (
	trendNone trend = iota
	trendFlat
	trendUp
	trendDown
)

// dayChange describes the move from prev to cur. Totals under a cent count as zero.
func dayChange(prev, cur float64) (string, trend) {
	if prev < 0.01 {
		if cur < 0.01 {
			return "0%", trendFlat
		}
		return "N/A", trendUp
	}

	pct := (cur - prev) / prev * 100.0
	switch {
	case math.Abs(pct) < 0.01:
		return "0%", trendFlat
	case pct > 999:
		return ">+999%", trendUp
	case pct > 0:
		return fmt.Sprintf("+%.2f%%", pct), trendUp
	default:
		return fmt.Sprintf("%.2f%%", pct), trendDown
	}
}

func (t trend) color() pterm.Color {
	switch t {
	case trendFlat:
		return pterm.FgYellow
	case trendUp:
		return pterm.FgRed
	case trendDown:
		return pterm.FgGreen
	default:
		return pterm.FgBlue
	}
}

// DisplayTrendBars exibe barras proporcionais ao custo de cada ponto, com a
// variação em relação ao ponto anterior.
func (c *Console) DisplayTrendBars(title string, points []types.TrendPoint) {
	maxCost := 0.0
	for _, p := range points {
		maxCost = math.Max(maxCost, p.Cost)
	}
	if maxCost == 0 {
		pterm.Warning.Println("All costs are $0.00 for this period")
		return
	}

	data := pterm.TableData{{"Date", "Cost", "", "Change"}}
	for i, p := range points {
		bar := strings.Repeat("█", int(p.Cost/maxCost*40))
		label, dir := "", trendNone
		if i > 0 {
			label, dir = dayChange(points[i-1].Cost, p.Cost)
		}
		data = append(data, []string{
			p.Label,
			fmt.Sprintf("$%.4f", p.Cost),
			dir.color().Sprint(bar),
			dir.color().Sprint(label),
		})
	}

	rendered, _ := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	fmt.Println("\n" + pterm.DefaultBox.WithTitle(title).WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(rendered))
}
