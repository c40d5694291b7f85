// Package overlay composites one rendered block on top of another without
// disturbing the ANSI styling of either.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position anchors the foreground within the screen.
type Position int

const (
	Center Position = iota
	Bottom
	TopRight
)

// Screen is the area the background occupies.
type Screen struct {
	Width  int
	Height int
	// Margin keeps anchored content away from the nearest edges.
	Margin int
}

// Place draws fg over bg at pos.
func Place(s Screen, pos Position, fg, bg string) string {
	rows := strings.Split(bg, "\n")
	for len(rows) < s.Height {
		rows = append(rows, "")
	}

	fgRows := strings.Split(fg, "\n")
	x, y := origin(s, pos, lipgloss.Width(fg), len(fgRows))

	for i, line := range fgRows {
		row := y + i
		if row >= len(rows) {
			break
		}
		rows[row] = splice(rows[row], line, x)
	}
	return strings.Join(rows, "\n")
}

// splice replaces the cells of base starting at column x with ins.
func splice(base, ins string, x int) string {
	left := ansi.Truncate(base, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(ins)
	var right string
	if end < ansi.StringWidth(base) {
		right = ansi.TruncateLeft(base, end, "")
	}
	return left + ins + right
}

func origin(s Screen, pos Position, w, h int) (x, y int) {
	switch pos {
	case Bottom:
		x = (s.Width - w) / 2
		y = s.Height - h - s.Margin
	case TopRight:
		x = s.Width - w - s.Margin
		y = s.Margin
	default:
		x = (s.Width - w) / 2
		y = (s.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
