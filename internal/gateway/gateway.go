// Package gateway is the typed request/response boundary to the remote
// search, notebook generation and code execution services.
package gateway

import (
	"context"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/notebook"
)

// DefaultTitle is sent to the generator when the user leaves the title blank.
const DefaultTitle = "Generated Workflow"

// Gateway is implemented by the HTTP client and by decorators such as the
// search cache. No method retries.
type Gateway interface {
	// Search returns up to limit ranked datasets for a free-text query.
	Search(ctx context.Context, query string, limit int) ([]dataset.SearchResult, error)

	// GenerateArtifact asks the generator for a notebook analysing ref.
	GenerateArtifact(ctx context.Context, ref dataset.Reference) (notebook.Artifact, error)

	// ExecuteCode runs source remotely. A program that exits non-zero is a
	// successful call: inspect ExecutionResult.ExitCode and Stderr.
	ExecuteCode(ctx context.Context, source string, timeoutSeconds int) (ExecutionResult, error)

	// Health checks that the service is reachable.
	Health(ctx context.Context) error
}

// Image is one rendered figure produced by an execution. Data is a
// self-contained payload, typically a data: URI.
type Image struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
}

// ExecutionResult is the outcome of running a program remotely.
type ExecutionResult struct {
	ExitCode int     `json:"exit_code"`
	Stdout   string  `json:"stdout"`
	Stderr   string  `json:"stderr"`
	Images   []Image `json:"images"`
}

// Failed reports whether the program exited non-zero.
func (r ExecutionResult) Failed() bool {
	return r.ExitCode != 0
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results *[]searchResult `json:"results"`
}

type searchResult struct {
	ID    any            `json:"id"`
	Score float64        `json:"score"`
	Meta  map[string]any `json:"meta"`
}

type generateRequest struct {
	DatasetURL    string `json:"dataset_url"`
	DatasetFormat string `json:"dataset_format"`
	Variable      string `json:"variable"`
	Title         string `json:"title"`
}

type executeRequest struct {
	Code    string `json:"code"`
	Timeout int    `json:"timeout"`
}

type executeResponse struct {
	ExitCode *int    `json:"exit_code"`
	Stdout   string  `json:"stdout"`
	Stderr   string  `json:"stderr"`
	Images   []Image `json:"images"`
}

// errorResponse is the error body shape of the remote services.
type errorResponse struct {
	Detail any `json:"detail"`
}
