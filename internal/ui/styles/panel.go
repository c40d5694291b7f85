package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Panel describes a bordered box with its title embedded in the top border:
//
//	╭─ Title (hint) ─────╮
//	│content             │
//	╰────────────────────╯
type Panel struct {
	Title   string
	Hint    string
	Width   int
	Height  int // 0 sizes the panel to its content
	Focused bool
	// Accent overrides the focused border colour.
	Accent lipgloss.TerminalColor
}

// Render draws content inside the panel. Lines wider than the panel are
// truncated, never wrapped.
func (p Panel) Render(content string) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	titleColor := lipgloss.TerminalColor(TextSecondaryColor)
	if p.Focused {
		borderColor = BorderFocusColor
		if p.Accent != nil {
			borderColor = p.Accent
		}
		titleColor = borderColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor).Bold(p.Focused)
	hintStyle := lipgloss.NewStyle().Foreground(TextMutedColor)

	inner := max(p.Width-2, 1)

	lines := strings.Split(content, "\n")
	if p.Height > 0 {
		rows := max(p.Height-2, 1)
		if len(lines) > rows {
			lines = lines[:rows]
		}
		for len(lines) < rows {
			lines = append(lines, "")
		}
	}

	var b strings.Builder
	b.WriteString(topBorder(p.Title, p.Hint, inner, borderStyle, titleStyle, hintStyle))
	for _, line := range lines {
		line = ansi.Truncate(line, inner, "…")
		if w := lipgloss.Width(line); w < inner {
			line += strings.Repeat(" ", inner-w)
		}
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, inner) + borderBottomRight))
	return b.String()
}

func topBorder(title, hint string, inner int, borderStyle, titleStyle, hintStyle lipgloss.Style) string {
	plain := borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, inner) + borderTopRight)
	// "─ " + title + " " needs at least four cells.
	if title == "" || inner < 4 {
		return plain
	}

	avail := inner - 3
	text := ansi.Truncate(title, avail, "…")
	used := lipgloss.Width(text)
	rendered := titleStyle.Render(text)
	if hint != "" && used+3+lipgloss.Width(hint) <= avail {
		rendered += " " + hintStyle.Render("("+hint+")")
		used += 3 + lipgloss.Width(hint)
	}

	return borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		rendered +
		borderStyle.Render(" "+strings.Repeat(borderHorizontal, max(avail-used, 0))+borderTopRight)
}
