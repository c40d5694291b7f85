package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/render"
	"github.com/photonhq/photon/internal/workflow"
)

func sampleResults() []dataset.SearchResult {
	return []dataset.SearchResult{
		{ID: "a", Score: 0.91, Meta: map[string]any{"title": "Sea Ice Extent", "url": "https://example.org/ice.nc"}},
		{ID: "b", Score: 0.4, Meta: map[string]any{"name": "Rainfall", "url": "https://example.org/rain.csv", "description": "daily totals"}},
	}
}

func TestFromSearchResults_KeepsOrder(t *testing.T) {
	got := FromSearchResults(sampleResults())

	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "Sea Ice Extent", got[0].Title)
	require.Equal(t, "netcdf", got[0].Format)
	require.Equal(t, "91.0%", got[0].Relevance)
	require.Equal(t, "csv", got[1].Format)
	require.Equal(t, "daily totals", got[1].Description)
}

func TestFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).JSON(FromSearchResults(sampleResults())))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "https://example.org/ice.nc", decoded[0]["url"])
}

func TestFormatter_SearchTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).SearchTable(FromSearchResults(sampleResults())))

	out := ansi.Strip(buf.String())
	require.Contains(t, out, "RELEVANCE")
	require.Contains(t, out, "Sea Ice Extent")
	require.Contains(t, out, "NETCDF")
	require.Contains(t, out, "https://example.org/rain.csv")
}

func TestFormatter_SearchTableEmpty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).SearchTable(nil))

	require.Equal(t, "No datasets found.\n", buf.String())
}

func TestFromView_WithFailedRun(t *testing.T) {
	v := render.View{
		Phase:     workflow.PhaseExecuted,
		HasResult: true,
		Details:   render.Details{Title: "Ice", URL: "https://example.org/ice.nc", Format: "NETCDF", BlockCount: 3, ExecutableCount: 2},
		Console:   render.Console{Stdout: "partial\n", ExitCode: 1},
		ErrorPanel: &render.ErrorPanel{
			ExitCode: 1,
			Stderr:   "Traceback",
		},
		Warning: "Program exited with code 1",
	}

	dto := FromView(v, "/tmp/ice.ipynb", nil)

	require.Equal(t, "NETCDF", dto.Format)
	require.Equal(t, 3, dto.Blocks)
	require.NotNil(t, dto.Execution)
	require.Equal(t, 1, dto.Execution.ExitCode)
	require.Equal(t, "Traceback", dto.Execution.Stderr)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).WorkflowSummary(dto))
	out := ansi.Strip(buf.String())
	require.Contains(t, out, "Notebook: 3 blocks, 2 executable")
	require.Contains(t, out, "Exported: /tmp/ice.ipynb")
	require.Contains(t, out, "Exit code: 1")
	require.Contains(t, out, "Traceback")
	require.Contains(t, out, "Warning: Program exited with code 1")
}

func TestFromView_WithoutRun(t *testing.T) {
	dto := FromView(render.View{Phase: workflow.PhaseGenerated}, "", nil)

	require.Nil(t, dto.Execution)
	require.Equal(t, string(workflow.PhaseGenerated), dto.Phase)
}
