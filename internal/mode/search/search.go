// Package search implements the dataset search mode: a free-text query, a
// ranked result list and a detail pane. Choosing a result publishes it on the
// selection channel for the workflow mode to pick up.
package search

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/keys"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/mode"
	"github.com/photonhq/photon/internal/ui/styles"
	"github.com/photonhq/photon/internal/ui/toaster"
)

// Focus identifies the pane receiving key input.
type Focus int

const (
	FocusInput Focus = iota
	FocusResults
)

// Model holds the search mode state.
type Model struct {
	services mode.Services

	input   textinput.Model
	list    list.Model
	spinner spinner.Model

	results   []dataset.SearchResult
	query     string // query that produced results
	searching bool
	seq       int // discards responses to superseded searches
	errText   string

	focus  Focus
	width  int
	height int
}

// New creates a new search mode controller.
func New(services mode.Services) Model {
	input := textinput.New()
	input.Placeholder = "Describe the data you need, e.g. global surface temperature anomalies"
	input.Prompt = "› "
	input.CharLimit = 500
	input.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextPlaceholderColor)
	input.Focus()

	l := list.New([]list.Item{}, resultDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.SpinnerColor)

	return Model{
		services: services,
		input:    input,
		list:     l,
		spinner:  sp,
		focus:    FocusInput,
	}
}

// Init returns initial commands for the mode.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetQuery replaces the input text.
func (m Model) SetQuery(q string) Model {
	m.input.SetValue(q)
	m.input.CursorEnd()
	return m
}

// Query returns the current input text.
func (m Model) Query() string { return m.input.Value() }

// Results returns the results currently listed.
func (m Model) Results() []dataset.SearchResult { return m.results }

// Searching reports whether a search is in flight.
func (m Model) Searching() bool { return m.searching }

// Focus returns the focused pane.
func (m Model) Focus() Focus { return m.focus }

// ErrorText returns the last search failure, if any.
func (m Model) ErrorText() string { return m.errText }

// SetSize handles terminal resize.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	if width == 0 || height == 0 {
		return m
	}
	left := m.leftWidth()
	m.input.Width = max(left-6, 1)
	m.list.SetSize(max(left-2, 1), max(height-5, 1))
	return m
}

func (m Model) leftWidth() int {
	if m.width < 80 {
		return m.width
	}
	return m.width * 3 / 5
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case resultsMsg:
		return m.handleResults(msg)

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == FocusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.focus == FocusInput {
		switch {
		case key.Matches(msg, keys.Search.Execute):
			return m.startSearch()
		case key.Matches(msg, keys.Search.Blur):
			if len(m.results) > 0 {
				m = m.setFocus(FocusResults)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Search.FocusInput), key.Matches(msg, keys.Common.Escape):
		m = m.setFocus(FocusInput)
		return m, textinput.Blink
	case key.Matches(msg, keys.Search.Analyze):
		m, cmd := m.selectCurrent()
		if cmd == nil {
			return m, nil
		}
		return m, tea.Batch(cmd, func() tea.Msg { return mode.SwitchModeMsg{Mode: mode.ModeWorkflow} })
	case key.Matches(msg, keys.Search.Select):
		return m.selectCurrent()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if z := zone.Get(inputZoneID); z != nil && z.InBounds(msg) {
		m = m.setFocus(FocusInput)
		return m, nil
	}
	for i := range m.results {
		if z := zone.Get(resultZoneID(i)); z != nil && z.InBounds(msg) {
			m.list.Select(i)
			m = m.setFocus(FocusResults)
			return m.selectCurrent()
		}
	}
	return m, nil
}

func (m Model) setFocus(f Focus) Model {
	m.focus = f
	if f == FocusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m
}

func (m Model) startSearch() (Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return m, mode.Toast("Enter a search query first", toaster.StyleWarn)
	}
	limit := 0
	if m.services.Config != nil {
		limit = m.services.Config.Search.Limit
	}
	if limit < 1 {
		limit = 5
	}

	m.seq++
	m.searching = true
	m.errText = ""
	log.Debug(log.CatUI, "search submitted", "query", q, "limit", limit)
	return m, tea.Batch(m.spinner.Tick, searchCmd(m.services, m.seq, q, limit))
}

func (m Model) handleResults(msg resultsMsg) (Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	m.searching = false

	if msg.err != nil {
		m.errText = describeError(msg.err)
		return m, mode.Toast(m.errText, toaster.StyleError)
	}

	m.query = msg.query
	m.results = msg.results
	items := make([]list.Item, len(msg.results))
	for i, r := range msg.results {
		items[i] = resultItem{index: i, result: r}
	}
	m.list.SetItems(items)
	m.list.Select(0)

	if len(msg.results) == 0 {
		return m, nil
	}
	m = m.setFocus(FocusResults)
	return m, nil
}

// selectCurrent publishes the highlighted result on the selection channel.
func (m Model) selectCurrent() (Model, tea.Cmd) {
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.results) {
		return m, nil
	}
	r := m.results[idx]
	ref := r.Reference()
	if m.services.Selection != nil {
		m.services.Selection.Select(ref)
	}
	log.Info(log.CatUI, "dataset chosen", "id", r.ID, "url", ref.URL)

	if ref.URL == "" {
		return m, mode.Toast("Selected "+r.Title()+" (no dataset URL in result)", toaster.StyleWarn)
	}
	return m, mode.Toast("Selected "+r.Title(), toaster.StyleSuccess)
}

func describeError(err error) string {
	switch gateway.KindOf(err) {
	case gateway.KindServiceUnavailable:
		return "Search service unavailable. Check the API URL and try again."
	case gateway.KindValidationRejected:
		return "Search rejected: " + gateway.DetailOf(err)
	case gateway.KindInvalidResponse:
		return "Search returned an unexpected response."
	}
	return "Search failed: " + err.Error()
}

// View renders the search mode.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	left := m.renderLeft(m.leftWidth())
	if m.leftWidth() == m.width {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderDetails(m.width-m.leftWidth()))
}

func (m Model) renderLeft(width int) string {
	inputLine := m.input.View()
	if m.searching {
		inputLine += " " + m.spinner.View()
	}
	inputPanel := zone.Mark(inputZoneID, styles.Panel{
		Title:   "Search",
		Hint:    "enter to search",
		Width:   width,
		Focused: m.focus == FocusInput,
	}.Render(inputLine))

	listHeight := max(m.height-lipgloss.Height(inputPanel), 3)
	var body string
	switch {
	case m.errText != "":
		body = styles.ErrorStyle.Render(wordwrap.String(m.errText, max(width-4, 1)))
	case m.searching && len(m.results) == 0:
		body = styles.MutedStyle.Render("Searching…")
	case m.query != "" && len(m.results) == 0:
		body = styles.MutedStyle.Render(fmt.Sprintf("No datasets found for %q", m.query))
	case len(m.results) == 0:
		body = styles.MutedStyle.Render("Results appear here")
	default:
		body = m.list.View()
	}

	title := "Results"
	if len(m.results) > 0 {
		title = fmt.Sprintf("Results (%d)", len(m.results))
	}
	resultsPanel := styles.Panel{
		Title:   title,
		Hint:    "enter select · ctrl+g analyze",
		Width:   width,
		Height:  listHeight,
		Focused: m.focus == FocusResults,
	}.Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, inputPanel, resultsPanel)
}

func (m Model) renderDetails(width int) string {
	inner := max(width-4, 1)
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.results) {
		return styles.Panel{Title: "Dataset", Width: width, Height: m.height}.
			Render(styles.MutedStyle.Render("Select a result to see details"))
	}
	r := m.results[idx]
	ref := r.Reference()

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(wordwrap.String(r.Title(), inner)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s  %s\n", styles.FormatBadge(ref.Format.String()), styles.SuccessStyle.Render(r.RelevancePercent()+" match"))
	if ref.URL != "" {
		b.WriteString(styles.MutedStyle.Render("URL  ") + wordwrap.String(ref.URL, inner-5) + "\n")
	}
	if ref.Variable != "" {
		b.WriteString(styles.MutedStyle.Render("Var  ") + ref.Variable + "\n")
	}
	b.WriteString("\n")
	b.WriteString(wordwrap.String(r.Description(), inner))

	if m.services.Selection != nil {
		if cur, ok := m.services.Selection.Current(); ok && cur.URL != "" && cur.URL == ref.URL {
			b.WriteString("\n\n" + styles.SuccessStyle.Render("● selected for workflow"))
		}
	}

	return styles.Panel{Title: "Dataset", Width: width, Height: m.height}.Render(b.String())
}

const inputZoneID = "search-input"

func resultZoneID(i int) string { return fmt.Sprintf("search-result-%d", i) }

// resultsMsg carries the outcome of one search request.
type resultsMsg struct {
	seq     int
	query   string
	results []dataset.SearchResult
	err     error
}

func searchCmd(s mode.Services, seq int, query string, limit int) tea.Cmd {
	gw := s.Gateway
	ctx := s.Context()
	return func() tea.Msg {
		if gw == nil {
			return resultsMsg{seq: seq, query: query, err: gateway.ErrServiceUnavailable}
		}
		results, err := gw.Search(ctx, query, limit)
		return resultsMsg{seq: seq, query: query, results: results, err: err}
	}
}
