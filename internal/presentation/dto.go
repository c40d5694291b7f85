package presentation

import (
	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/render"
)

// SearchResultDTO is one search hit as printed by `photon search --json`.
type SearchResultDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
	Format      string  `json:"format,omitempty"`
	Score       float64 `json:"score"`
	Relevance   string  `json:"relevance"`
}

// FromSearchResults converts ranked results, keeping their order.
func FromSearchResults(results []dataset.SearchResult) []SearchResultDTO {
	out := make([]SearchResultDTO, 0, len(results))
	for _, r := range results {
		ref := r.Reference()
		out = append(out, SearchResultDTO{
			ID:          r.ID,
			Title:       r.Title(),
			Description: r.Description(),
			URL:         r.URL(),
			Format:      ref.Format.String(),
			Score:       r.Score,
			Relevance:   r.RelevancePercent(),
		})
	}
	return out
}

// WorkflowDTO summarizes a generate (and optional run) invocation.
type WorkflowDTO struct {
	Phase      string        `json:"phase"`
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	Format     string        `json:"format"`
	Variable   string        `json:"variable,omitempty"`
	Blocks     int           `json:"blocks"`
	Executable int           `json:"executable"`
	ExportPath string        `json:"export_path,omitempty"`
	Execution  *ExecutionDTO `json:"execution,omitempty"`
	Warning    string        `json:"warning,omitempty"`
	Error      string        `json:"error,omitempty"`
	ImagePaths []string      `json:"images,omitempty"`
}

// ExecutionDTO is the outcome of a remote run.
type ExecutionDTO struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr,omitempty"`
	Images   int    `json:"images"`
}

// FromView converts a workflow projection. exportPath and imagePaths are
// where the command wrote files, if anywhere.
func FromView(v render.View, exportPath string, imagePaths []string) WorkflowDTO {
	dto := WorkflowDTO{
		Phase:      string(v.Phase),
		Title:      v.Details.Title,
		URL:        v.Details.URL,
		Format:     v.Details.Format,
		Variable:   v.Details.Variable,
		Blocks:     v.Details.BlockCount,
		Executable: v.Details.ExecutableCount,
		ExportPath: exportPath,
		Warning:    v.Warning,
		Error:      v.ErrorMessage,
		ImagePaths: imagePaths,
	}
	if v.HasResult {
		dto.Execution = &ExecutionDTO{
			ExitCode: v.Console.ExitCode,
			Stdout:   v.Console.Stdout,
			Images:   len(v.Images),
		}
		if v.ErrorPanel != nil {
			dto.Execution.Stderr = v.ErrorPanel.Stderr
		}
	}
	return dto
}

// HealthDTO is printed by `photon health --json`.
type HealthDTO struct {
	BaseURL string `json:"base_url"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}
