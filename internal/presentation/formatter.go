// Package presentation formats command output for scripts and terminals.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// JSON writes v as indented JSON.
func (f *Formatter) JSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true)
)

// SearchTable writes results as a table with rank, relevance, title, format
// and URL columns.
func (f *Formatter) SearchTable(results []SearchResultDTO) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(f.writer, "No datasets found.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "RELEVANCE", "TITLE", "FORMAT", "URL").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i, r := range results {
		t.Row(fmt.Sprint(i+1), r.Relevance, r.Title, strings.ToUpper(r.Format), r.URL)
	}
	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}

// WorkflowSummary writes a human-readable summary of a generate or run.
func (f *Formatter) WorkflowSummary(w WorkflowDTO) error {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label+":"), value)
	}

	line("Title", w.Title)
	line("Dataset", w.URL)
	line("Format", w.Format)
	line("Variable", w.Variable)
	line("Notebook", fmt.Sprintf("%d blocks, %d executable", w.Blocks, w.Executable))
	line("Exported", w.ExportPath)
	if w.Execution != nil {
		line("Exit code", fmt.Sprint(w.Execution.ExitCode))
		if w.Execution.Stdout != "" {
			fmt.Fprintf(&b, "\n%s\n%s\n", labelStyle.Render("Output"), strings.TrimRight(w.Execution.Stdout, "\n"))
		}
		if w.Execution.Stderr != "" {
			fmt.Fprintf(&b, "\n%s\n%s\n", labelStyle.Render("Errors"), strings.TrimRight(w.Execution.Stderr, "\n"))
		}
	}
	for _, p := range w.ImagePaths {
		line("Figure", p)
	}
	line("Warning", w.Warning)
	line("Error", w.Error)

	_, err := io.WriteString(f.writer, b.String())
	return err
}
