// Package workflow drives one generate → execute lifecycle for a dataset: it
// owns the form, the generated notebook, the latest execution result and the
// error shown to the user.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/notebook"
)

// Phase is the single tagged state of a workflow instance.
type Phase string

const (
	// PhaseIdle means nothing has been generated yet.
	PhaseIdle Phase = "idle"
	// PhaseGenerating means a generate request is in flight.
	PhaseGenerating Phase = "generating"
	// PhaseGenerated means a notebook is ready to run or export.
	PhaseGenerated Phase = "generated"
	// PhaseExecuting means an execute request is in flight.
	PhaseExecuting Phase = "executing"
	// PhaseExecuted means the latest run returned a result.
	PhaseExecuted Phase = "executed"
	// PhaseError means the last request failed. It is not terminal.
	PhaseError Phase = "error"
)

// InFlight reports whether a request is outstanding.
func (p Phase) InFlight() bool {
	return p == PhaseGenerating || p == PhaseExecuting
}

// Label returns a short human label for status lines.
func (p Phase) Label() string {
	switch p {
	case PhaseIdle:
		return "Ready"
	case PhaseGenerating:
		return "Generating notebook"
	case PhaseGenerated:
		return "Notebook ready"
	case PhaseExecuting:
		return "Executing"
	case PhaseExecuted:
		return "Execution complete"
	case PhaseError:
		return "Error"
	default:
		return string(p)
	}
}

// Precondition errors. They are returned to the caller and never change state.
var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("workflow is busy")
	// ErrNoArtifact is returned by Run and Export before a notebook exists.
	ErrNoArtifact = errors.New("no notebook has been generated")
	// ErrInvalidForm wraps the form's validation error.
	ErrInvalidForm = errors.New("invalid workflow form")
)

// State is a snapshot of a workflow instance. Values returned by Machine.State
// are copies and may be kept by the caller.
type State struct {
	ID    string
	Phase Phase

	// Form holds the current inputs. Reselect may change it at any time.
	Form dataset.Reference

	// Source is the reference the current Artifact was generated from.
	Source   dataset.Reference
	Artifact notebook.Artifact

	Result *gateway.ExecutionResult

	// Err is the failure behind PhaseError; ErrMessage is its user-facing
	// rendering.
	Err        error
	ErrMessage string

	// Warning is set when a run exits non-zero with stderr output.
	Warning string

	// Since is when the current phase was entered.
	Since time.Time
}

// HasArtifact reports whether a notebook is available to run or export.
func (s State) HasArtifact() bool {
	return !s.Artifact.IsZero()
}

// CanSubmit reports whether Submit would be accepted, ignoring form validity.
func (s State) CanSubmit() bool {
	return !s.Phase.InFlight()
}

// CanRun reports whether Run would be accepted.
func (s State) CanRun() bool {
	return !s.Phase.InFlight() && s.HasArtifact()
}

func (s State) clone() State {
	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}
	return s
}

// WarningPreviewLen bounds the stderr excerpt in Warning.
const WarningPreviewLen = 200

const warningPrefix = "Execution completed with warnings: "

// ExecutionWarning returns the warning shown for res: a bounded stderr
// excerpt when the program exited non-zero and wrote to stderr, otherwise "".
func ExecutionWarning(res gateway.ExecutionResult) string {
	if res.ExitCode == 0 || res.Stderr == "" {
		return ""
	}
	return warningPrefix + Truncate(res.Stderr, WarningPreviewLen)
}

// describe turns a request failure into the message shown to the user.
func describe(action string, err error) string {
	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		detail := gerr.Message
		if detail == "" && gerr.Err != nil {
			detail = gerr.Err.Error()
		}
		switch gerr.Kind {
		case gateway.KindServiceUnavailable:
			if detail == "" {
				return fmt.Sprintf("Failed to %s: the service is unavailable. Try again.", action)
			}
			return fmt.Sprintf("Failed to %s: the service is unavailable (%s). Try again.", action, detail)
		case gateway.KindValidationRejected:
			return fmt.Sprintf("Failed to %s: the service rejected the request: %s", action, detail)
		case gateway.KindInvalidResponse:
			return fmt.Sprintf("Failed to %s: unexpected response from the service: %s", action, detail)
		}
	}
	return fmt.Sprintf("Failed to %s: %v", action, err)
}
