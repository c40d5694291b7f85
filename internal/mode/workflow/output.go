package workflow

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/photonhq/photon/internal/render"
	"github.com/photonhq/photon/internal/ui/markdown"
	"github.com/photonhq/photon/internal/ui/styles"
	wf "github.com/photonhq/photon/internal/workflow"
)

// outputContent renders the scrollable part of the output pane.
func outputContent(v render.View, width int, showCode bool, md *markdown.Renderer) string {
	var sections []string

	if v.Phase == wf.PhaseError && v.ErrorMessage != "" {
		sections = append(sections, styles.ErrorStyle.Render(wordwrap.String(v.ErrorMessage, width)))
	}
	if v.Warning != "" {
		sections = append(sections, styles.WarningStyle.Render(wordwrap.String(v.Warning, width)))
	}

	if !v.HasArtifact {
		if len(sections) == 0 {
			sections = append(sections, styles.MutedStyle.Render(emptyHint(v.Phase)))
		}
		return strings.Join(sections, "\n\n")
	}

	sections = append(sections, renderDetails(v.Details, width))
	if showCode {
		sections = append(sections, heading("Source"), markdown.RenderOrPlain(md, fence(v.Source)))
	} else {
		sections = append(sections, heading("Notebook"))
		for _, b := range v.Blocks {
			sections = append(sections, renderBlock(b, md))
		}
	}

	if v.HasResult {
		sections = append(sections, renderResult(v, width))
	}
	return strings.Join(sections, "\n\n")
}

func emptyHint(p wf.Phase) string {
	if p == wf.PhaseGenerating {
		return "Generating notebook…"
	}
	return "Fill in the form and press ctrl+g to generate a notebook."
}

func heading(s string) string {
	return styles.TitleStyle.Render(s)
}

func renderDetails(d render.Details, width int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(wordwrap.String(d.Title, width)))
	b.WriteString("\n")
	b.WriteString(styles.FormatBadge(strings.ToLower(d.Format)))
	if d.Variable != "" {
		b.WriteString(" " + styles.MutedStyle.Render("var") + " " + d.Variable)
	}
	b.WriteString("\n")
	if d.URL != "" {
		b.WriteString(styles.MutedStyle.Render(wordwrap.String(d.URL, width)) + "\n")
	}
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d blocks, %d executable", d.BlockCount, d.ExecutableCount)))
	return b.String()
}

func renderBlock(b render.Block, md *markdown.Renderer) string {
	if b.Executable {
		label := styles.MutedStyle.Render(fmt.Sprintf("[%d] code", b.Index+1))
		return label + "\n" + markdown.RenderOrPlain(md, fence(b.Text))
	}
	return markdown.RenderOrPlain(md, b.Text)
}

// fence wraps source in a python code fence, widening the fence when the
// source itself contains backticks.
func fence(src string) string {
	marker := "```"
	for strings.Contains(src, marker) {
		marker += "`"
	}
	return marker + "python\n" + strings.TrimRight(src, "\n") + "\n" + marker
}

func renderResult(v render.View, width int) string {
	var parts []string
	parts = append(parts, heading(fmt.Sprintf("Output (exit %d)", v.Console.ExitCode)))

	if strings.TrimSpace(v.Console.Stdout) != "" {
		parts = append(parts, wordwrap.String(strings.TrimRight(v.Console.Stdout, "\n"), width))
	} else {
		parts = append(parts, styles.MutedStyle.Render("(no output)"))
	}

	if len(v.Images) > 0 {
		var b strings.Builder
		b.WriteString(heading(fmt.Sprintf("Figures (%d)", len(v.Images))))
		for _, img := range v.Images {
			b.WriteString("\n• " + img.Filename)
			if img.Size > 0 {
				b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  %s, %s", img.MediaType, formatBytes(img.Size))))
			} else {
				b.WriteString(styles.MutedStyle.Render("  undecodable"))
			}
		}
		b.WriteString("\n" + styles.MutedStyle.Render("ctrl+s to save"))
		parts = append(parts, b.String())
	}

	if v.ErrorPanel != nil {
		stderr := strings.TrimRight(v.ErrorPanel.Stderr, "\n")
		if stderr == "" {
			stderr = "(no stderr)"
		}
		parts = append(parts,
			styles.ErrorStyle.Render(fmt.Sprintf("Exited with code %d", v.ErrorPanel.ExitCode))+"\n"+
				wordwrap.String(stderr, width))
	}
	return strings.Join(parts, "\n\n")
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
