package search

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/ui/styles"
)

// resultItem wraps a search hit for the list component.
type resultItem struct {
	index  int
	result dataset.SearchResult
}

// FilterValue implements list.Item.
func (i resultItem) FilterValue() string { return i.result.Title() }

// resultDelegate renders one hit per line:
//
//	> [csv]    GISS Surface Temperature Analysis          87.3%
type resultDelegate struct{}

func (resultDelegate) Height() int                             { return 1 }
func (resultDelegate) Spacing() int                            { return 0 }
func (resultDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// formatColumn fits the widest badge, "[netcdf]".
const formatColumn = 9

func (resultDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(resultItem)
	if !ok {
		return
	}
	_, _ = fmt.Fprint(w, zone.Mark(resultZoneID(it.index), renderRow(it.result, m.Width(), index == m.Index())))
}

func renderRow(r dataset.SearchResult, width int, selected bool) string {
	prefix := "  "
	if selected {
		prefix = styles.SelectionIndicatorStyle.Render(">") + " "
	}

	format := r.Reference().Format.String()
	badge := styles.FormatBadge(format)
	badge += runewidth.FillRight("", formatColumn-runewidth.StringWidth("["+format+"]"))

	score := r.RelevancePercent()
	titleWidth := max(width-2-formatColumn-1-runewidth.StringWidth(score), 1)
	title := runewidth.FillRight(runewidth.Truncate(r.Title(), titleWidth, "…"), titleWidth)

	titleStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	if selected {
		titleStyle = titleStyle.Bold(true)
	}
	return prefix + badge + titleStyle.Render(title) + " " + styles.MutedStyle.Render(score)
}
