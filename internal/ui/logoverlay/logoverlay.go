// Package logoverlay provides an in-app log viewer overlay that shows
// recent log entries without leaving the TUI.
//
// The overlay keeps its own bounded buffer. The app feeds it every
// log.LogEvent it receives from log.NewListener.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/ui/overlay"
	"github.com/photonhq/photon/internal/ui/styles"
)

const (
	// MaxEntries bounds the buffer; older entries are dropped first.
	MaxEntries = 500

	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40
)

// CloseMsg is sent when the overlay should be closed.
type CloseMsg struct{}

// Model is the log overlay component state.
type Model struct {
	visible  bool
	minLevel log.Level
	entries  []string
	width    int
	height   int
	viewport viewport.Model
}

// New creates a new log overlay model.
func New() Model {
	return Model{minLevel: log.LevelDebug}
}

// Append records a log entry. While visible, the view follows the tail if
// it was already at the bottom.
func (m Model) Append(entry string) Model {
	entry = strings.TrimRight(entry, "\n")
	if entry == "" {
		return m
	}
	m.entries = append(m.entries, entry)
	if over := len(m.entries) - MaxEntries; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
	if m.visible {
		follow := m.viewport.AtBottom()
		m = m.refreshViewport()
		if follow {
			m.viewport.GotoBottom()
		}
	}
	return m
}

// Entries returns the entries that pass the current level filter.
func (m Model) Entries() []string {
	var out []string
	for _, e := range m.entries {
		if levelOf(e) >= m.minLevel {
			out = append(out, e)
		}
	}
	return out
}

// MinLevel returns the active filter.
func (m Model) MinLevel() log.Level { return m.minLevel }

// Update handles messages for the log overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			m.entries = nil
			return m.refreshViewport(), nil
		case "d":
			return m.filter(log.LevelDebug), nil
		case "i":
			return m.filter(log.LevelInfo), nil
		case "w":
			return m.filter(log.LevelWarn), nil
		case "e":
			return m.filter(log.LevelError), nil
		case "j", "down":
			m.viewport.ScrollDown(1)
			return m, nil
		case "k", "up":
			m.viewport.ScrollUp(1)
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		case "f12", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	}

	return m, nil
}

func (m Model) filter(level log.Level) Model {
	m.minLevel = level
	m = m.refreshViewport()
	m.viewport.GotoBottom()
	return m
}

// View renders the log overlay content.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	boxWidth := m.boxWidth()
	divider := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor).Render(strings.Repeat("─", boxWidth))
	header := lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimaryColor).PaddingLeft(1).Render("Logs")

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.filterHint())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusColor).
		Width(boxWidth).
		Render(b.String())
}

func (m Model) content(width int) string {
	entries := m.Entries()
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true).Render("No logs to display")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = colorize(e, width)
	}
	return strings.Join(lines, "\n")
}

func (m Model) refreshViewport() Model {
	if m.width == 0 || m.height == 0 {
		return m
	}
	width := m.boxWidth() - 2
	// header, footer and borders take six lines
	height := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)

	m.viewport = viewport.New(width, height)
	m.viewport.SetContent(m.content(width))
	return m
}

// Overlay renders the log overlay centered on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Screen{Width: m.width, Height: m.height}, overlay.Center, m.View(), bg)
}

// Visible returns whether the overlay is currently visible.
func (m Model) Visible() bool {
	return m.visible
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

// Toggle flips visibility, scrolling to the newest entry when shown.
func (m Model) Toggle() Model {
	if m.visible {
		return m.Hide()
	}
	return m.Show()
}

// Show makes the overlay visible.
func (m Model) Show() Model {
	m.visible = true
	m = m.refreshViewport()
	m.viewport.GotoBottom()
	return m
}

// Hide makes the overlay invisible.
func (m Model) Hide() Model {
	m.visible = false
	return m
}

// SetSize updates the overlay's knowledge of the screen size.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m.refreshViewport()
}

// levelOf reads the bracketed level from a formatted entry. Entries without
// one are treated as errors so that they are never filtered out.
func levelOf(entry string) log.Level {
	switch {
	case strings.Contains(entry, "[DEBUG]"):
		return log.LevelDebug
	case strings.Contains(entry, "[INFO]"):
		return log.LevelInfo
	case strings.Contains(entry, "[WARN]"):
		return log.LevelWarn
	}
	return log.LevelError
}

func colorize(entry string, width int) string {
	if ansi.StringWidth(entry) > width {
		entry = ansi.Truncate(entry, width, "…")
	}
	var c lipgloss.TerminalColor
	switch levelOf(entry) {
	case log.LevelError:
		c = styles.StatusErrorColor
	case log.LevelWarn:
		c = styles.StatusWarningColor
	case log.LevelInfo:
		c = styles.AccentColor
	default:
		c = styles.TextMutedColor
	}
	return lipgloss.NewStyle().Foreground(c).Render(entry)
}

func (m Model) filterHint() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	parts := []string{hint.Render("[c] Clear")}
	for _, lv := range []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	} {
		if m.minLevel == lv.level {
			parts = append(parts, active.Render(lv.label))
		} else {
			parts = append(parts, hint.Render(lv.label))
		}
	}
	return strings.Join(parts, "  ")
}
