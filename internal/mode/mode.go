// Package mode defines the mode identifiers, cross-mode messages and the
// services shared by mode controllers.
package mode

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/photonhq/photon/internal/config"
	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/mode/shared"
	"github.com/photonhq/photon/internal/selection"
	"github.com/photonhq/photon/internal/ui/toaster"
	"github.com/photonhq/photon/internal/workflow"
)

// AppMode identifies the current application mode.
type AppMode int

const (
	ModeSearch AppMode = iota
	ModeWorkflow
)

// String returns the mode name used in logs and the status bar.
func (m AppMode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeWorkflow:
		return "workflow"
	}
	return "unknown"
}

// Services contains shared dependencies injected into mode controllers.
type Services struct {
	// Ctx is cancelled when the program exits. Gateway calls started from the
	// UI derive from it.
	Ctx context.Context

	Gateway   gateway.Gateway
	Selection *selection.Channel
	Workflow  *workflow.Machine

	Config     *config.Config
	ConfigPath string

	Clipboard shared.Clipboard
	Clock     shared.Clock
}

// Context returns Ctx, or context.Background when unset.
func (s Services) Context() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

// ShowToastMsg asks the app to show a toast notification.
type ShowToastMsg struct {
	Message string
	Style   toaster.Style
}

// SwitchModeMsg asks the app to activate another mode.
type SwitchModeMsg struct {
	Mode AppMode
}

// Toast returns a command that emits a ShowToastMsg.
func Toast(message string, style toaster.Style) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message, Style: style} }
}
