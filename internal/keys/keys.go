// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// CommonKeys are shared by every mode.
type CommonKeys struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Escape key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// AppKeys switch between modes and toggle global chrome.
type AppKeys struct {
	SearchMode   key.Binding
	WorkflowMode key.Binding
	NextMode     key.Binding
	ToggleStatus key.Binding
	ToggleLogs   key.Binding
}

// SearchKeys are active in search mode.
type SearchKeys struct {
	FocusInput key.Binding
	Execute    key.Binding
	Blur       key.Binding
	Select     key.Binding
	Analyze    key.Binding
}

// WorkflowKeys are active in workflow mode.
type WorkflowKeys struct {
	NextField   key.Binding
	PrevField   key.Binding
	CycleFormat key.Binding
	Generate    key.Binding
	Run         key.Binding
	Export      key.Binding
	SaveImages  key.Binding
	Example     key.Binding
	Reset       key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	ToggleCode  key.Binding
	CopyCode    key.Binding
}

// Common bindings.
var Common = CommonKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("↑", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("↓", "move down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "go back"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("f1", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// App bindings.
var App = AppKeys{
	SearchMode: key.NewBinding(
		key.WithKeys("f2"),
		key.WithHelp("f2", "search"),
	),
	WorkflowMode: key.NewBinding(
		key.WithKeys("f3"),
		key.WithHelp("f3", "workflow"),
	),
	NextMode: key.NewBinding(
		key.WithKeys("ctrl+@"),
		key.WithHelp("ctrl+space", "switch mode"),
	),
	ToggleStatus: key.NewBinding(
		key.WithKeys("f4"),
		key.WithHelp("f4", "toggle status bar"),
	),
	ToggleLogs: key.NewBinding(
		key.WithKeys("f12"),
		key.WithHelp("f12", "logs (debug)"),
	),
}

// Search bindings.
var Search = SearchKeys{
	FocusInput: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "focus search"),
	),
	Execute: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "search"),
	),
	Blur: key.NewBinding(
		key.WithKeys("esc", "tab"),
		key.WithHelp("esc", "results"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "select dataset"),
	),
	Analyze: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "select and open workflow"),
	),
}

// Workflow bindings. Text fields stay editable, so actions use ctrl chords.
var Workflow = WorkflowKeys{
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	CycleFormat: key.NewBinding(
		key.WithKeys("ctrl+f"),
		key.WithHelp("ctrl+f", "cycle format"),
	),
	Generate: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "generate"),
	),
	Run: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "run"),
	),
	Export: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "export notebook"),
	),
	SaveImages: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save figures"),
	),
	Example: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "next example"),
	),
	Reset: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "reset"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "scroll down"),
	),
	ToggleCode: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "toggle code/blocks"),
	),
	CopyCode: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy code"),
	),
}

// SearchHelp groups search bindings for the help view.
func SearchHelp() [][]key.Binding {
	return [][]key.Binding{
		{Search.FocusInput, Search.Execute, Search.Blur},
		{Common.Up, Common.Down, Search.Select, Search.Analyze},
		{App.WorkflowMode, App.ToggleStatus, Common.Help, Common.Quit},
	}
}

// WorkflowHelp groups workflow bindings for the help view.
func WorkflowHelp() [][]key.Binding {
	return [][]key.Binding{
		{Workflow.NextField, Workflow.PrevField, Workflow.CycleFormat, Workflow.Example},
		{Workflow.Generate, Workflow.Run, Workflow.Reset},
		{Workflow.Export, Workflow.SaveImages, Workflow.CopyCode, Workflow.ToggleCode, Workflow.ScrollUp, Workflow.ScrollDown},
		{App.SearchMode, App.ToggleStatus, Common.Help, Common.Quit},
	}
}
