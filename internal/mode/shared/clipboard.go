// Package shared provides utilities used by more than one mode controller.
package shared

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/muesli/termenv"
)

// Clipboard copies text for the user.
type Clipboard interface {
	Copy(text string) error
}

// ErrNoClipboard is returned when no clipboard program is available.
var ErrNoClipboard = errors.New("no clipboard utility found")

// SystemClipboard copies through the platform clipboard tool, or through the
// terminal with an OSC 52 escape when running over SSH or inside a
// multiplexer where the local tools cannot reach the user's clipboard.
type SystemClipboard struct {
	// Terminal receives OSC 52 sequences. Defaults to os.Stdout.
	Terminal io.Writer
}

// Copy copies text to the clipboard.
func (c SystemClipboard) Copy(text string) error {
	if shouldUseOSC52(os.Getenv) {
		w := c.Terminal
		if w == nil {
			w = os.Stdout
		}
		termenv.NewOutput(w).Copy(text)
		return nil
	}

	name, args, err := clipboardCommand(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// MockClipboard records the last copied text.
type MockClipboard struct {
	Last *string
	Err  error
}

// Copy stores text in Last when it is set.
func (m MockClipboard) Copy(text string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Last != nil {
		*m.Last = text
	}
	return nil
}

func shouldUseOSC52(getenv func(string) string) bool {
	for _, k := range []string{"SSH_TTY", "SSH_CLIENT", "SSH_CONNECTION", "TMUX", "STY"} {
		if getenv(k) != "" {
			return true
		}
	}
	return false
}

func clipboardCommand(goos string, lookPath func(string) (string, error)) (string, []string, error) {
	var candidates [][]string
	switch goos {
	case "darwin":
		candidates = [][]string{{"pbcopy"}}
	case "windows":
		candidates = [][]string{{"clip"}}
	default:
		candidates = [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}
	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return c[0], c[1:], nil
		}
	}
	return "", nil, ErrNoClipboard
}
