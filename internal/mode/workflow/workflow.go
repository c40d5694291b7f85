// Package workflow implements the workflow mode: a dataset form, the
// generate and run actions, and a scrollable view of the notebook and its
// execution result.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/keys"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/mode"
	"github.com/photonhq/photon/internal/mode/shared"
	"github.com/photonhq/photon/internal/notebook"
	"github.com/photonhq/photon/internal/pubsub"
	"github.com/photonhq/photon/internal/render"
	"github.com/photonhq/photon/internal/selection"
	"github.com/photonhq/photon/internal/ui/markdown"
	"github.com/photonhq/photon/internal/ui/styles"
	"github.com/photonhq/photon/internal/ui/toaster"
	wf "github.com/photonhq/photon/internal/workflow"
)

// Field identifies a form field.
type Field int

const (
	FieldURL Field = iota
	FieldFormat
	FieldVariable
	FieldTitle
	fieldCount
)

func (f Field) label() string {
	switch f {
	case FieldURL:
		return "Dataset URL"
	case FieldFormat:
		return "Format"
	case FieldVariable:
		return "Variable"
	case FieldTitle:
		return "Title (optional)"
	}
	return ""
}

// Model holds the workflow mode state.
type Model struct {
	services mode.Services
	machine  *wf.Machine

	url      textinput.Model
	variable textinput.Model
	title    textinput.Model
	format   int // index into dataset.Formats
	focus    Field
	example  int // next entry of dataset.Examples to load

	spinner  spinner.Model
	viewport viewport.Model
	md       *markdown.Renderer
	showCode bool

	state wf.State
	view  render.View

	width  int
	height int
}

// New creates a new workflow mode controller. When services carries no
// machine, one is created on services.Gateway.
func New(services mode.Services) Model {
	machine := services.Workflow
	if machine == nil {
		machine = wf.New(services.Gateway)
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.SpinnerColor)

	m := Model{
		services: services,
		machine:  machine,
		url:      newInput("https://example.org/data.csv", 2048),
		variable: newInput("column or variable name", 200),
		title:    newInput(defaultTitle(services), 200),
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
	m.url.Focus()
	m = m.refresh()
	m = m.loadForm(m.state.Form)
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "› "
	in.CharLimit = limit
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextPlaceholderColor)
	return in
}

func defaultTitle(s mode.Services) string {
	if s.Config != nil && strings.TrimSpace(s.Config.Workflow.DefaultTitle) != "" {
		return s.Config.Workflow.DefaultTitle
	}
	return gateway.DefaultTitle
}

// Init returns initial commands for the mode.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Machine returns the workflow instance driven by this mode.
func (m Model) Machine() *wf.Machine { return m.machine }

// State returns the latest snapshot shown on screen.
func (m Model) State() wf.State { return m.state }

// Projection returns the latest projection shown on screen.
func (m Model) Projection() render.View { return m.view }

// Focus returns the focused form field.
func (m Model) Focus() Field { return m.focus }

// Form returns the reference described by the form fields.
func (m Model) Form() dataset.Reference {
	return dataset.Reference{
		URL:      m.url.Value(),
		Format:   dataset.Formats[m.format],
		Variable: m.variable.Value(),
		Title:    m.title.Value(),
	}
}

// SetForm replaces the form fields with ref and forwards it to the machine.
func (m Model) SetForm(ref dataset.Reference) Model {
	m.machine.Reselect(ref)
	m = m.loadForm(ref)
	return m.refresh()
}

func (m Model) loadForm(ref dataset.Reference) Model {
	m.url.SetValue(ref.URL)
	m.variable.SetValue(ref.Variable)
	m.title.SetValue(ref.Title)
	m.format = 0
	for i, f := range dataset.Formats {
		if f == ref.Format {
			m.format = i
		}
	}
	return m
}

// SetSize handles terminal resize.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	if width == 0 || height == 0 {
		return m
	}

	formW, outW, outH := m.layout()
	inputW := max(formW-6, 1)
	m.url.Width = inputW
	m.variable.Width = inputW
	m.title.Width = inputW

	m.viewport.Width = max(outW-4, 1)
	m.viewport.Height = max(outH-4, 1)

	style := "dark"
	if m.services.Config != nil && m.services.Config.UI.MarkdownStyle != "" {
		style = m.services.Config.UI.MarkdownStyle
	}
	if m.md == nil || m.md.Width() != m.viewport.Width || m.md.Style() != style {
		md, err := markdown.New(m.viewport.Width, style)
		if err != nil {
			log.Warn(log.CatUI, "markdown renderer unavailable", "style", style, "error", err)
		}
		m.md = md
	}
	return m.rebuild()
}

// wide reports whether the form and output sit side by side.
func (m Model) wide() bool { return m.width >= 100 }

// formHeight is the height of the form panel in the stacked layout.
const formHeight = 16

// layout returns the form panel width and the output panel size.
func (m Model) layout() (formW, outW, outH int) {
	if m.wide() {
		formW = m.width * 2 / 5
		return formW, m.width - formW, m.height
	}
	return m.width, m.width, max(m.height-formHeight, 6)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case pubsub.Event[selection.Selection]:
		return m.handleSelection(msg)

	case generatedMsg:
		return m.handleGenerated(msg)

	case executedMsg:
		return m.handleExecuted(msg)

	case spinner.TickMsg:
		if !m.state.Phase.InFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Workflow.Generate):
		return m.generate()
	case key.Matches(msg, keys.Workflow.Run):
		return m.run()
	case key.Matches(msg, keys.Workflow.Export):
		return m.export()
	case key.Matches(msg, keys.Workflow.SaveImages):
		return m.saveImages()
	case key.Matches(msg, keys.Workflow.CopyCode):
		return m.copyCode()
	case key.Matches(msg, keys.Workflow.Example):
		return m.nextExample()
	case key.Matches(msg, keys.Workflow.Reset):
		return m.reset()
	case key.Matches(msg, keys.Workflow.CycleFormat):
		return m.cycleFormat(1), nil
	case key.Matches(msg, keys.Workflow.ToggleCode):
		m.showCode = !m.showCode
		m = m.rebuild()
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, keys.Workflow.ScrollUp):
		m.viewport.ScrollUp(max(m.viewport.Height/2, 1))
		return m, nil
	case key.Matches(msg, keys.Workflow.ScrollDown):
		m.viewport.ScrollDown(max(m.viewport.Height/2, 1))
		return m, nil
	case key.Matches(msg, keys.Workflow.NextField):
		return m.setFocus((m.focus + 1) % fieldCount)
	case key.Matches(msg, keys.Workflow.PrevField):
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	}

	if m.focus == FieldFormat {
		switch msg.String() {
		case "left", "h":
			return m.cycleFormat(-1), nil
		case "right", "l", " ":
			return m.cycleFormat(1), nil
		case "enter":
			return m.setFocus(FieldVariable)
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		if m.focus == FieldTitle {
			return m.generate()
		}
		return m.setFocus(m.focus + 1)
	}
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case FieldURL:
		m.url, cmd = m.url.Update(msg)
	case FieldVariable:
		m.variable, cmd = m.variable.Update(msg)
	case FieldTitle:
		m.title, cmd = m.title.Update(msg)
	}
	return m, cmd
}

func (m Model) setFocus(f Field) (Model, tea.Cmd) {
	m.focus = f
	m.url.Blur()
	m.variable.Blur()
	m.title.Blur()
	switch f {
	case FieldURL:
		return m, m.url.Focus()
	case FieldVariable:
		return m, m.variable.Focus()
	case FieldTitle:
		return m, m.title.Focus()
	}
	return m, nil
}

func (m Model) cycleFormat(step int) Model {
	n := len(dataset.Formats)
	m.format = ((m.format+step)%n + n) % n
	return m
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.viewport.ScrollUp(3)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.viewport.ScrollDown(3)
		return m, nil
	}
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	for f := FieldURL; f < fieldCount; f++ {
		if z := zone.Get(fieldZoneID(f)); z != nil && z.InBounds(msg) {
			if f == FieldFormat && m.focus == FieldFormat {
				return m.cycleFormat(1), nil
			}
			return m.setFocus(f)
		}
	}
	switch {
	case inZone(zoneGenerate, msg):
		return m.generate()
	case inZone(zoneRun, msg):
		return m.run()
	case inZone(zoneExport, msg):
		return m.export()
	}
	return m, nil
}

func inZone(id string, msg tea.MouseMsg) bool {
	z := zone.Get(id)
	return z != nil && z.InBounds(msg)
}

func (m Model) handleSelection(ev pubsub.Event[selection.Selection]) (Model, tea.Cmd) {
	if !ev.Payload.Present {
		return m, nil
	}
	ref := ev.Payload.Ref
	cur := m.Form()
	if ref == cur {
		return m, nil
	}
	m = m.SetForm(ref)
	return m, mode.Toast("Form filled from "+ref.DisplayTitle(), toaster.StyleInfo)
}

func (m Model) nextExample() (Model, tea.Cmd) {
	if len(dataset.Examples) == 0 {
		return m, nil
	}
	ex := dataset.Examples[m.example%len(dataset.Examples)]
	m.example++
	m = m.SetForm(ex.Ref)
	return m, mode.Toast("Loaded example: "+ex.Name, toaster.StyleInfo)
}

func (m Model) reset() (Model, tea.Cmd) {
	m.machine.Reset()
	m = m.loadForm(dataset.Reference{})
	m = m.refresh()
	m.viewport.GotoTop()
	m, _ = m.setFocus(FieldURL)
	return m, tea.Batch(textinput.Blink, mode.Toast("Workflow reset", toaster.StyleInfo))
}

// generate submits the form. The request runs in a command; its outcome
// arrives as a generatedMsg.
func (m Model) generate() (Model, tea.Cmd) {
	sub, err := m.machine.BeginSubmit(m.Form())
	if err != nil {
		return m, toastPrecondition(err)
	}
	m = m.refresh()
	return m, tea.Batch(m.spinner.Tick, generateCmd(m.services.Context(), m.machine, sub))
}

func (m Model) handleGenerated(msg generatedMsg) (Model, tea.Cmd) {
	st := m.machine.CompleteSubmit(msg.sub, msg.art, msg.err)
	m = m.refresh()
	m.viewport.GotoTop()

	switch st.Phase {
	case wf.PhaseGenerated:
		return m, mode.Toast(fmt.Sprintf("Notebook generated (%d blocks)", len(st.Artifact.Blocks)), toaster.StyleSuccess)
	case wf.PhaseError:
		return m, mode.Toast(st.ErrMessage, toaster.StyleError)
	}
	return m, nil
}

func (m Model) run() (Model, tea.Cmd) {
	ex, err := m.machine.BeginRun()
	if err != nil {
		return m, toastPrecondition(err)
	}
	m = m.refresh()
	return m, tea.Batch(m.spinner.Tick, executeCmd(m.services.Context(), m.machine, ex))
}

func (m Model) handleExecuted(msg executedMsg) (Model, tea.Cmd) {
	st := m.machine.CompleteRun(msg.ex, msg.res, msg.err)
	m = m.refresh()

	switch st.Phase {
	case wf.PhaseExecuted:
		m.viewport.GotoBottom()
		if st.Result != nil && st.Result.Failed() {
			return m, mode.Toast(fmt.Sprintf("Program exited with code %d", st.Result.ExitCode), toaster.StyleWarn)
		}
		return m, mode.Toast("Execution complete", toaster.StyleSuccess)
	case wf.PhaseError:
		return m, mode.Toast(st.ErrMessage, toaster.StyleError)
	}
	return m, nil
}

func toastPrecondition(err error) tea.Cmd {
	switch {
	case errors.Is(err, wf.ErrBusy):
		return mode.Toast("A request is already running", toaster.StyleWarn)
	case errors.Is(err, wf.ErrNoArtifact):
		return mode.Toast("Generate a notebook first", toaster.StyleWarn)
	case errors.Is(err, wf.ErrInvalidForm):
		msg := strings.TrimPrefix(err.Error(), wf.ErrInvalidForm.Error()+": ")
		return mode.Toast("Check the form: "+msg, toaster.StyleError)
	}
	return mode.Toast(err.Error(), toaster.StyleError)
}

func (m Model) exportDir() string {
	if m.services.Config != nil && m.services.Config.Workflow.ExportDir != "" {
		return m.services.Config.Workflow.ExportDir
	}
	return "."
}

func (m Model) export() (Model, tea.Cmd) {
	exp, err := m.machine.Export()
	if err != nil {
		return m, toastPrecondition(err)
	}
	path, err := exp.WriteTo(m.exportDir())
	if err != nil {
		log.ErrorErr(log.CatWorkflow, "export failed", err)
		return m, mode.Toast("Export failed: "+err.Error(), toaster.StyleError)
	}
	return m, mode.Toast("Exported "+path, toaster.StyleSuccess)
}

func (m Model) saveImages() (Model, tea.Cmd) {
	if len(m.view.Images) == 0 {
		return m, mode.Toast("No figures to save", toaster.StyleWarn)
	}
	paths, err := render.SaveImages(m.exportDir(), m.view.Images)
	if err != nil {
		log.ErrorErr(log.CatWorkflow, "saving figures failed", err, "saved", len(paths))
		return m, mode.Toast("Saving figures failed: "+err.Error(), toaster.StyleError)
	}
	if len(paths) == 0 {
		return m, mode.Toast("No decodable figures in the result", toaster.StyleWarn)
	}
	log.Info(log.CatWorkflow, "figures saved", "count", len(paths), "dir", m.exportDir())
	return m, mode.Toast(fmt.Sprintf("Saved %d figure(s) to %s", len(paths), m.exportDir()), toaster.StyleSuccess)
}

func (m Model) copyCode() (Model, tea.Cmd) {
	if m.view.Source == "" {
		return m, mode.Toast("No code to copy", toaster.StyleWarn)
	}
	if m.services.Clipboard == nil {
		return m, mode.Toast("Clipboard unavailable", toaster.StyleError)
	}
	if err := m.services.Clipboard.Copy(m.view.Source); err != nil {
		log.ErrorErr(log.CatUI, "clipboard copy failed", err)
		return m, mode.Toast("Copy failed: "+err.Error(), toaster.StyleError)
	}
	return m, mode.Toast("Code copied to clipboard", toaster.StyleSuccess)
}

// refresh re-reads the machine state and rebuilds the output pane.
func (m Model) refresh() Model {
	m.state = m.machine.State()
	m.view = render.Project(m.state)
	return m.rebuild()
}

func (m Model) rebuild() Model {
	if m.viewport.Width <= 0 {
		return m
	}
	m.viewport.SetContent(outputContent(m.view, m.viewport.Width, m.showCode, m.md))
	return m
}

// View renders the workflow mode.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	formW, outW, outH := m.layout()
	output := m.renderOutput(outW, outH)
	if m.wide() {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.renderForm(formW, m.height), output)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderForm(formW, formHeight), output)
}

const (
	zoneGenerate = "workflow-generate"
	zoneRun      = "workflow-run"
	zoneExport   = "workflow-export"
)

func fieldZoneID(f Field) string { return fmt.Sprintf("workflow-field-%d", f) }

func (m Model) renderForm(width, height int) string {
	var b strings.Builder
	for f := FieldURL; f < fieldCount; f++ {
		label := styles.FormLabelStyle
		if f == m.focus {
			label = styles.FormLabelFocusedStyle
		}
		var value string
		switch f {
		case FieldURL:
			value = m.url.View()
		case FieldFormat:
			value = m.renderFormats()
		case FieldVariable:
			value = m.variable.View()
		case FieldTitle:
			value = m.title.View()
		}
		b.WriteString(zone.Mark(fieldZoneID(f), label.Render(f.label())+"\n"+value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderButtons())
	if len(dataset.Examples) > 0 {
		next := dataset.Examples[m.example%len(dataset.Examples)]
		b.WriteString("\n\n" + styles.MutedStyle.Render("ctrl+x example: "+next.Name))
	}

	return styles.Panel{
		Title:   "Workflow",
		Hint:    "tab next field",
		Width:   width,
		Height:  height,
		Focused: true,
	}.Render(b.String())
}

func (m Model) renderFormats() string {
	parts := make([]string, len(dataset.Formats))
	for i, f := range dataset.Formats {
		if i == m.format {
			parts[i] = styles.FormatBadge(f.String())
		} else {
			parts[i] = styles.MutedStyle.Render(f.String())
		}
	}
	prefix := "  "
	if m.focus == FieldFormat {
		prefix = styles.SelectionIndicatorStyle.Render("›") + " "
	}
	return prefix + strings.Join(parts, " ")
}

func (m Model) renderButtons() string {
	button := func(id, label string, enabled bool) string {
		style := styles.DisabledButtonStyle
		if enabled {
			style = styles.PrimaryButtonStyle
		}
		return zone.Mark(id, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		button(zoneGenerate, "Generate", m.state.CanSubmit()), " ",
		button(zoneRun, "Run", m.state.CanRun()), " ",
		button(zoneExport, "Export", m.state.HasArtifact()),
	)
}

func (m Model) renderOutput(width, height int) string {
	status := m.statusLine()
	title := "Notebook"
	if m.showCode {
		title = "Code"
	}
	hint := ""
	if m.viewport.TotalLineCount() > m.viewport.Height {
		hint = fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100)
	}
	return styles.Panel{
		Title:  title,
		Hint:   hint,
		Width:  width,
		Height: height,
	}.Render(status + "\n\n" + m.viewport.View())
}

func (m Model) statusLine() string {
	p := m.state.Phase
	badge := styles.PhaseBadge(m.view.PhaseLabel, p.InFlight(),
		p == wf.PhaseGenerated || p == wf.PhaseExecuted, p == wf.PhaseError)
	if !p.InFlight() {
		return badge
	}
	now := m.now()
	elapsed := shared.FormatElapsed(now.Sub(m.state.Since))
	line := badge + " " + m.spinner.View() + " " + styles.MutedStyle.Render(elapsed)
	if p == wf.PhaseExecuting {
		line += styles.MutedStyle.Render(fmt.Sprintf(" (limit %ds)", m.machine.ExecutionTimeout()))
	}
	return line
}

func (m Model) now() time.Time {
	if m.services.Clock != nil {
		return m.services.Clock.Now()
	}
	return shared.RealClock{}.Now()
}

// generatedMsg carries the outcome of a generate request.
type generatedMsg struct {
	sub wf.Submission
	art notebook.Artifact
	err error
}

// executedMsg carries the outcome of an execute request.
type executedMsg struct {
	ex  wf.Execution
	res gateway.ExecutionResult
	err error
}

func generateCmd(ctx context.Context, m *wf.Machine, sub wf.Submission) tea.Cmd {
	return func() tea.Msg {
		art, err := m.Generate(ctx, sub)
		return generatedMsg{sub: sub, art: art, err: err}
	}
}

func executeCmd(ctx context.Context, m *wf.Machine, ex wf.Execution) tea.Cmd {
	return func() tea.Msg {
		res, err := m.Execute(ctx, ex)
		return executedMsg{ex: ex, res: res, err: err}
	}
}
