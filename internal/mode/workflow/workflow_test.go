package workflow

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/photonhq/photon/internal/config"
	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/mocks"
	"github.com/photonhq/photon/internal/mode"
	"github.com/photonhq/photon/internal/mode/shared"
	"github.com/photonhq/photon/internal/notebook"
	"github.com/photonhq/photon/internal/pubsub"
	"github.com/photonhq/photon/internal/selection"
	"github.com/photonhq/photon/internal/ui/toaster"
	wf "github.com/photonhq/photon/internal/workflow"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

const notebookText = `{"cells":[{"cell_type":"markdown","source":"Loading the temperature table"},{"cell_type":"code","source":"import pandas as pd\nprint('rows', 12)"}],"nbformat":4}`

type fixture struct {
	gw        *mocks.MockGateway
	exportDir string
	copied    string
}

func newTestModel(t *testing.T) (Model, *fixture) {
	t.Helper()
	f := &fixture{gw: mocks.NewMockGateway(t), exportDir: t.TempDir()}
	cfg := config.Defaults()
	cfg.Workflow.ExportDir = f.exportDir
	m := New(mode.Services{
		Ctx:       context.Background(),
		Gateway:   f.gw,
		Config:    &cfg,
		Clipboard: shared.MockClipboard{Last: &f.copied},
	})
	return m.SetSize(140, 40), f
}

func artifact(t *testing.T) notebook.Artifact {
	t.Helper()
	art, err := notebook.Parse(notebookText)
	require.NoError(t, err)
	return art
}

func validRef() dataset.Reference {
	return dataset.Reference{
		URL:      "https://data.example.org/temp.csv",
		Format:   dataset.FormatCSV,
		Variable: "anomaly",
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func requireToast(t *testing.T, cmd tea.Cmd, style toaster.Style) mode.ShowToastMsg {
	t.Helper()
	toast, ok := findMsg[mode.ShowToastMsg](collect(cmd))
	require.True(t, ok, "expected a toast")
	require.Equal(t, style, toast.Style, "toast %q", toast.Message)
	return toast
}

func ctrl(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

// generate drives a full generate cycle through Update.
func generate(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	m, cmd := m.Update(ctrl(tea.KeyCtrlG))
	require.Equal(t, wf.PhaseGenerating, m.State().Phase)
	msg, ok := findMsg[generatedMsg](collect(cmd))
	require.True(t, ok)
	return m.Update(msg)
}

func run(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	m, cmd := m.Update(ctrl(tea.KeyCtrlR))
	require.Equal(t, wf.PhaseExecuting, m.State().Phase)
	msg, ok := findMsg[executedMsg](collect(cmd))
	require.True(t, ok)
	return m.Update(msg)
}

func generatedModel(t *testing.T) (Model, *fixture) {
	t.Helper()
	m, f := newTestModel(t)
	f.gw.EXPECT().GenerateArtifact(mock.Anything, mock.Anything).Return(artifact(t), nil).Once()
	m = m.SetForm(validRef())
	m, _ = generate(t, m)
	require.Equal(t, wf.PhaseGenerated, m.State().Phase)
	return m, f
}

func TestNew_EmptyForm(t *testing.T) {
	m, _ := newTestModel(t)

	require.Equal(t, wf.PhaseIdle, m.State().Phase)
	require.Equal(t, FieldURL, m.Focus())
	require.Equal(t, dataset.FormatCSV, m.Form().Format)
	require.Contains(t, ansi.Strip(m.View()), "press ctrl+g to generate")
}

func TestNew_UsesSharedMachine(t *testing.T) {
	machine := wf.New(mocks.NewMockGateway(t))
	machine.Reselect(validRef())

	m := New(mode.Services{Workflow: machine})

	require.Same(t, machine, m.Machine())
	require.Equal(t, validRef().URL, m.Form().URL, "form is loaded from the machine")
}

func TestFieldNavigationAndFormatCycle(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = m.Update(ctrl(tea.KeyTab))
	require.Equal(t, FieldFormat, m.Focus())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, dataset.FormatNetCDF, m.Form().Format)

	m, _ = m.Update(ctrl(tea.KeyCtrlF))
	require.Equal(t, dataset.FormatHDF5, m.Form().Format)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, dataset.FormatJSON, m.Form().Format, "cycling wraps around")

	m, _ = m.Update(ctrl(tea.KeyShiftTab))
	m, _ = m.Update(ctrl(tea.KeyShiftTab))
	require.Equal(t, FieldTitle, m.Focus())
}

func TestTypingFillsFocusedField(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("https://x.org/a.csv")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, FieldFormat, m.Focus())

	require.Equal(t, "https://x.org/a.csv", m.Form().URL)
}

func TestExampleLoadsForm(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := m.Update(ctrl(tea.KeyCtrlX))
	requireToast(t, cmd, toaster.StyleInfo)
	require.Equal(t, dataset.Examples[0].Ref, m.Form())
	require.Equal(t, dataset.Examples[0].Ref, m.Machine().State().Form)

	m, _ = m.Update(ctrl(tea.KeyCtrlX))
	require.Equal(t, dataset.Examples[1].Ref, m.Form())
	require.Equal(t, dataset.FormatNetCDF, m.Form().Format)
}

func TestSelectionFillsForm(t *testing.T) {
	m, _ := newTestModel(t)
	ref := validRef()
	ref.Title = "Temperature"
	ev := pubsub.Event[selection.Selection]{
		Type:    pubsub.SelectedEvent,
		Payload: selection.Selection{Ref: ref, Present: true},
	}

	m, cmd := m.Update(ev)
	requireToast(t, cmd, toaster.StyleInfo)
	require.Equal(t, ref, m.Form())
	require.Equal(t, wf.PhaseIdle, m.State().Phase, "reselect never changes phase")

	_, cmd = m.Update(ev)
	require.Nil(t, cmd, "same selection is not announced twice")

	_, cmd = m.Update(pubsub.Event[selection.Selection]{Type: pubsub.ClearedEvent})
	require.Nil(t, cmd)
}

func TestGenerate_InvalidForm(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := m.Update(ctrl(tea.KeyCtrlG))

	toast := requireToast(t, cmd, toaster.StyleError)
	require.Contains(t, toast.Message, "Check the form")
	require.Equal(t, wf.PhaseIdle, m.State().Phase)
}

func TestGenerate_Success(t *testing.T) {
	m, f := newTestModel(t)
	f.gw.EXPECT().GenerateArtifact(mock.Anything, mock.Anything).
		Run(func(_ context.Context, ref dataset.Reference) {
			require.Equal(t, gateway.DefaultTitle, ref.Title)
		}).
		Return(artifact(t), nil).Once()
	m = m.SetForm(validRef())

	m, cmd := generate(t, m)

	toast := requireToast(t, cmd, toaster.StyleSuccess)
	require.Contains(t, toast.Message, "2 blocks")
	view := ansi.Strip(m.View())
	require.Contains(t, view, "Notebook ready")
	require.Contains(t, view, "Loading the temperature table")
	require.Contains(t, view, "2 blocks, 1 executable")
}

func TestGenerate_Failure(t *testing.T) {
	m, f := newTestModel(t)
	f.gw.EXPECT().GenerateArtifact(mock.Anything, mock.Anything).
		Return(notebook.Artifact{}, &gateway.Error{Kind: gateway.KindServiceUnavailable, Op: "generate", Err: errors.New("refused")}).Once()
	m = m.SetForm(validRef())

	m, cmd := generate(t, m)

	requireToast(t, cmd, toaster.StyleError)
	require.Equal(t, wf.PhaseError, m.State().Phase)
	require.Equal(t, validRef().URL, m.Form().URL, "form survives a failure")
	require.Contains(t, ansi.Strip(m.View()), "Failed to generate workflow")
}

func TestGenerate_BusyRejected(t *testing.T) {
	m, _ := newTestModel(t)
	m = m.SetForm(validRef())

	m, _ = m.Update(ctrl(tea.KeyCtrlG))
	require.Equal(t, wf.PhaseGenerating, m.State().Phase)

	_, cmd := m.Update(ctrl(tea.KeyCtrlG))
	toast := requireToast(t, cmd, toaster.StyleWarn)
	require.Contains(t, toast.Message, "already running")
}

func TestStaleGenerationIgnoredAfterReset(t *testing.T) {
	m, f := newTestModel(t)
	f.gw.EXPECT().GenerateArtifact(mock.Anything, mock.Anything).Return(artifact(t), nil).Once()
	m = m.SetForm(validRef())

	m, cmd := m.Update(ctrl(tea.KeyCtrlG))
	pending, ok := findMsg[generatedMsg](collect(cmd))
	require.True(t, ok)

	m, _ = m.Update(ctrl(tea.KeyCtrlL))
	require.Empty(t, m.Form().URL)

	m, cmd = m.Update(pending)
	require.Nil(t, cmd)
	require.Equal(t, wf.PhaseIdle, m.State().Phase)
	require.False(t, m.State().HasArtifact())
}

func TestRun_BeforeGenerate(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(ctrl(tea.KeyCtrlR))

	toast := requireToast(t, cmd, toaster.StyleWarn)
	require.Contains(t, toast.Message, "Generate a notebook first")
}

func TestRun_Success(t *testing.T) {
	m, f := generatedModel(t)
	f.gw.EXPECT().ExecuteCode(mock.Anything, "import pandas as pd\nprint('rows', 12)", wf.DefaultExecutionTimeout).
		Return(gateway.ExecutionResult{ExitCode: 0, Stdout: "rows 12\n"}, nil).Once()

	m, cmd := run(t, m)

	requireToast(t, cmd, toaster.StyleSuccess)
	require.Equal(t, wf.PhaseExecuted, m.State().Phase)
	view := ansi.Strip(m.View())
	require.Contains(t, view, "Output (exit 0)")
	require.Contains(t, view, "rows 12")
}

func TestRun_NonZeroExit(t *testing.T) {
	m, f := generatedModel(t)
	f.gw.EXPECT().ExecuteCode(mock.Anything, mock.Anything, mock.Anything).
		Return(gateway.ExecutionResult{ExitCode: 1, Stderr: "NameError: x"}, nil).Once()

	m, cmd := run(t, m)

	toast := requireToast(t, cmd, toaster.StyleWarn)
	require.Contains(t, toast.Message, "code 1")
	require.Equal(t, wf.PhaseExecuted, m.State().Phase)
	require.Contains(t, m.State().Warning, "NameError")
	require.Contains(t, ansi.Strip(m.View()), "Exited with code 1")
}

func TestExportWritesNotebook(t *testing.T) {
	m, f := generatedModel(t)

	_, cmd := m.Update(ctrl(tea.KeyCtrlE))

	requireToast(t, cmd, toaster.StyleSuccess)
	data, err := os.ReadFile(filepath.Join(f.exportDir, "workflow.ipynb"))
	require.NoError(t, err)
	require.Contains(t, string(data), "Loading the temperature table")
}

func TestExportWithoutNotebook(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(ctrl(tea.KeyCtrlE))

	requireToast(t, cmd, toaster.StyleWarn)
}

func TestSaveImages(t *testing.T) {
	m, f := generatedModel(t)
	png := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))
	f.gw.EXPECT().ExecuteCode(mock.Anything, mock.Anything, mock.Anything).
		Return(gateway.ExecutionResult{Images: []gateway.Image{{Filename: "plot.png", Data: png}}}, nil).Once()
	m, _ = run(t, m)
	require.Contains(t, ansi.Strip(m.View()), "plot.png")

	_, cmd := m.Update(ctrl(tea.KeyCtrlS))

	requireToast(t, cmd, toaster.StyleSuccess)
	data, err := os.ReadFile(filepath.Join(f.exportDir, "plot.png"))
	require.NoError(t, err)
	require.Equal(t, "\x89PNG fake", string(data))
}

func TestSaveImages_NoFigures(t *testing.T) {
	m, _ := generatedModel(t)

	_, cmd := m.Update(ctrl(tea.KeyCtrlS))

	requireToast(t, cmd, toaster.StyleWarn)
}

func TestCopyCode(t *testing.T) {
	m, f := generatedModel(t)

	_, cmd := m.Update(ctrl(tea.KeyCtrlY))

	requireToast(t, cmd, toaster.StyleSuccess)
	require.Equal(t, "import pandas as pd\nprint('rows', 12)", f.copied)
}

func TestToggleCodeShowsSource(t *testing.T) {
	m, _ := generatedModel(t)

	m, _ = m.Update(ctrl(tea.KeyCtrlO))

	view := ansi.Strip(m.View())
	require.Contains(t, view, "Source")
	require.Contains(t, view, "import pandas as pd")
}

func TestStackedLayout(t *testing.T) {
	m, _ := newTestModel(t)
	m = m.SetSize(80, 40)

	view := ansi.Strip(m.View())
	require.Contains(t, view, "Workflow")
	require.Contains(t, view, "Notebook")
}

func TestFence(t *testing.T) {
	require.Equal(t, "```python\nx = 1\n```", fence("x = 1\n"))
	require.Equal(t, "````python\ns = '```'\n````", fence("s = '```'"))
}
