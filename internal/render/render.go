// Package render shapes a workflow snapshot into the panels the user sees.
// It never fails: missing or malformed pieces become empty panels.
package render

import (
	"strings"

	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/notebook"
	"github.com/photonhq/photon/internal/workflow"
)

// Details summarizes the generated notebook.
type Details struct {
	Title           string
	URL             string
	Format          string // upper-case, e.g. "CSV"
	Variable        string
	BlockCount      int
	ExecutableCount int
}

// Block is one notebook cell prepared for display.
type Block struct {
	Index      int
	Executable bool
	CellType   string
	Text       string
}

// Console holds program output.
type Console struct {
	Stdout   string
	ExitCode int
}

// ErrorPanel is shown only when the program exited non-zero.
type ErrorPanel struct {
	ExitCode int
	Stderr   string
}

// View is everything the workflow screen draws.
type View struct {
	Phase      workflow.Phase
	PhaseLabel string

	HasArtifact bool
	Details     Details
	// CodePreview is the notebook as it would be exported.
	CodePreview string
	// Source is the code that is sent for execution.
	Source string
	Blocks []Block

	HasResult  bool
	Images     []Image
	Console    Console
	ErrorPanel *ErrorPanel

	Warning      string
	ErrorMessage string
}

// Project builds the View for st.
func Project(st workflow.State) View {
	v := View{
		Phase:        st.Phase,
		PhaseLabel:   st.Phase.Label(),
		Warning:      st.Warning,
		ErrorMessage: st.ErrMessage,
	}
	if v.ErrorMessage == "" && st.Err != nil {
		v.ErrorMessage = st.Err.Error()
	}

	if st.HasArtifact() {
		v.HasArtifact = true
		v.Details = details(st)
		v.CodePreview = codePreview(st.Artifact)
		v.Source = notebook.ExtractExecutableSource(st.Artifact)
		v.Blocks = blocks(st.Artifact)
	}

	if st.Result != nil {
		v.HasResult = true
		v.Images = images(st.Result.Images)
		v.Console = Console{Stdout: st.Result.Stdout, ExitCode: st.Result.ExitCode}
		if st.Result.ExitCode != 0 {
			v.ErrorPanel = &ErrorPanel{ExitCode: st.Result.ExitCode, Stderr: st.Result.Stderr}
		}
	}
	return v
}

func details(st workflow.State) Details {
	ref := st.Source
	if ref.URL == "" {
		ref = st.Form
	}
	return Details{
		Title:           ref.DisplayTitle(),
		URL:             ref.URL,
		Format:          strings.ToUpper(ref.Format.String()),
		Variable:        ref.Variable,
		BlockCount:      len(st.Artifact.Blocks),
		ExecutableCount: st.Artifact.Count(notebook.KindExecutable),
	}
}

func codePreview(a notebook.Artifact) string {
	s, err := notebook.SerializeForExport(a)
	if err != nil {
		return ""
	}
	return s
}

func blocks(a notebook.Artifact) []Block {
	out := make([]Block, 0, len(a.Blocks))
	for i, b := range a.Blocks {
		out = append(out, Block{
			Index:      i,
			Executable: b.Kind == notebook.KindExecutable,
			CellType:   b.CellType,
			Text:       b.Text(),
		})
	}
	return out
}

func images(in []gateway.Image) []Image {
	out := make([]Image, 0, len(in))
	for i, img := range in {
		out = append(out, describeImage(i, img))
	}
	return out
}
