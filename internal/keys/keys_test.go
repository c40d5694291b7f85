package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_ActionsAvoidPrintableKeys(t *testing.T) {
	// Workflow form fields accept free text, so no action may be bound to a
	// printable character.
	for _, group := range WorkflowHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				require.Greater(t, len(k), 1, "binding %q (%s) is a printable key", k, b.Help().Desc)
			}
		}
	}
}

func TestWorkflow_NoDuplicateKeys(t *testing.T) {
	seen := map[string]string{}
	for _, group := range WorkflowHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				if prev, ok := seen[k]; ok {
					t.Fatalf("key %q bound to both %q and %q", k, prev, b.Help().Desc)
				}
				seen[k] = b.Help().Desc
			}
		}
	}
}

func TestBindingsHaveHelp(t *testing.T) {
	all := append(SearchHelp(), WorkflowHelp()...)
	for _, group := range all {
		for _, b := range group {
			require.NotEmpty(t, b.Help().Key)
			require.NotEmpty(t, b.Help().Desc)
		}
	}
}

func TestKeyAssignments(t *testing.T) {
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"generate", Workflow.Generate, []string{"ctrl+g"}},
		{"run", Workflow.Run, []string{"ctrl+r"}},
		{"export", Workflow.Export, []string{"ctrl+e"}},
		{"search mode", App.SearchMode, []string{"f2"}},
		{"workflow mode", App.WorkflowMode, []string{"f3"}},
		{"quit", Common.Quit, []string{"ctrl+c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
		})
	}
}
