package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/notebook"
)

const (
	exportExt         = ".ipynb"
	defaultExportName = "workflow"
	maxFilenameLen    = 120
)

// Export is a notebook ready to be saved.
type Export struct {
	Filename string
	Content  string
}

// Export serializes the current notebook. It is available in every phase
// once a notebook exists and never changes state.
func (m *Machine) Export() (Export, error) {
	st := m.State()
	if !st.HasArtifact() {
		return Export{}, ErrNoArtifact
	}

	content, err := notebook.SerializeForExport(st.Artifact)
	if err != nil {
		return Export{}, fmt.Errorf("serialize notebook: %w", err)
	}
	return Export{Filename: ExportFilename(st.Source.Title), Content: content}, nil
}

// ExportFilename derives a file name from a workflow title. A blank title
// yields "workflow.ipynb".
func ExportFilename(title string) string {
	name := strings.TrimSpace(title)
	name = strings.TrimSuffix(name, exportExt)

	var b strings.Builder
	for _, r := range name {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name = strings.Trim(b.String(), ". ")
	if runes := []rune(name); len(runes) > maxFilenameLen {
		name = strings.TrimSpace(string(runes[:maxFilenameLen]))
	}
	if name == "" {
		name = defaultExportName
	}
	return name + exportExt
}

// WriteTo saves the export under dir and returns the written path. The file
// is written to a temp file first and renamed into place.
func (e Export) WriteTo(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".photon-export.tmp.*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.WriteString(e.Content); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	path := filepath.Join(dir, e.Filename)
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	log.Info(log.CatWorkflow, "notebook exported", "path", path, "bytes", len(e.Content))
	return path, nil
}
