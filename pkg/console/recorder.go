package console

import (
	"fmt"
	"strings"
	"sync"

	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
)

// Recorder é um ConsoleInterface que guarda a saída em memória, para testes.
type Recorder struct {
	mu      sync.Mutex
	Lines   []string
	Answers map[string]string
}

// NewRecorder cria um Recorder vazio.
func NewRecorder() *Recorder {
	return &Recorder{Answers: map[string]string{}}
}

func (r *Recorder) add(level, format string, a ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, level+": "+fmt.Sprintf(format, a...))
}

// Output returns everything recorded so far, one entry per line.
func (r *Recorder) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.Lines, "\n")
}

func (r *Recorder) Print(a ...interface{})                 { r.add("PRINT", "%s", fmt.Sprint(a...)) }
func (r *Recorder) Printf(format string, a ...interface{}) { r.add("PRINT", format, a...) }
func (r *Recorder) Println(a ...interface{})               { r.add("PRINT", "%s", fmt.Sprint(a...)) }

func (r *Recorder) LogInfo(format string, a ...interface{})    { r.add("INFO", format, a...) }
func (r *Recorder) LogWarning(format string, a ...interface{}) { r.add("WARNING", format, a...) }
func (r *Recorder) LogError(format string, a ...interface{})   { r.add("ERROR", format, a...) }
func (r *Recorder) LogSuccess(format string, a ...interface{}) { r.add("SUCCESS", format, a...) }

func (r *Recorder) Status(message string) types.StatusHandle {
	r.add("STATUS", "%s", message)
	return recorderStatus{r: r}
}

func (r *Recorder) CreateTable() types.TableInterface {
	return &Table{columns: []string{}, rows: [][]string{}}
}

func (r *Recorder) DisplayTrendBars(title string, points []types.TrendPoint) {
	r.add("TREND", "%s (%d points)", title, len(points))
}

func (r *Recorder) Box(title, content string, alert bool) {
	level := "BOX"
	if alert {
		level = "ALERT"
	}
	r.add(level, "%s\n%s", title, content)
}

func (r *Recorder) Prompt(label string, secret bool) (string, error) {
	r.add("PROMPT", "%s", label)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Answers[label], nil
}

type recorderStatus struct{ r *Recorder }

func (s recorderStatus) Update(message string) { s.r.add("STATUS", "%s", message) }
func (s recorderStatus) Stop()                 {}

var _ types.ConsoleInterface = (*Recorder)(nil)
var _ types.ConsoleInterface = (*Console)(nil)
