package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestPanel_Dimensions(t *testing.T) {
	out := Panel{Title: "Details", Width: 20, Height: 5}.Render("one\ntwo")
	lines := strings.Split(ansi.Strip(out), "\n")

	require.Len(t, lines, 5)
	for _, l := range lines {
		require.Equal(t, 20, lipgloss.Width(l), "line %q", l)
	}
	require.True(t, strings.HasPrefix(lines[0], "╭─ Details "))
	require.True(t, strings.HasPrefix(lines[1], "│one"))
	require.True(t, strings.HasPrefix(lines[4], "╰"))
}

func TestPanel_AutoHeight(t *testing.T) {
	out := Panel{Width: 10}.Render("a\nb\nc")
	lines := strings.Split(ansi.Strip(out), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "╭────────╮", lines[0])
}

func TestPanel_TruncatesWideLinesAndTitle(t *testing.T) {
	out := Panel{Title: "A very long panel title", Width: 12}.Render(strings.Repeat("x", 40))
	lines := strings.Split(ansi.Strip(out), "\n")
	for _, l := range lines {
		require.Equal(t, 12, lipgloss.Width(l), "line %q", l)
	}
	require.Contains(t, lines[0], "…")
	require.Contains(t, lines[1], "…")
}

func TestPanel_HintDroppedWhenNarrow(t *testing.T) {
	wide := ansi.Strip(Panel{Title: "Code", Hint: "ctrl+e export", Width: 40}.Render(""))
	require.Contains(t, wide, "(ctrl+e export)")

	narrow := ansi.Strip(Panel{Title: "Code", Hint: "ctrl+e export", Width: 14}.Render(""))
	require.NotContains(t, narrow, "ctrl+e")
	require.Contains(t, narrow, "Code")
}

func TestPanel_ClipsToHeight(t *testing.T) {
	out := Panel{Width: 10, Height: 3}.Render("1\n2\n3\n4")
	lines := strings.Split(ansi.Strip(out), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "1")
}

func TestFormatBadge(t *testing.T) {
	require.Equal(t, "[csv]", ansi.Strip(FormatBadge("csv")))
	require.Equal(t, "[parquet]", ansi.Strip(FormatBadge("parquet")))
}

func TestPhaseBadge(t *testing.T) {
	require.Contains(t, ansi.Strip(PhaseBadge("Generating", true, false, false)), "Generating")
}
