package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/notebook"
	"github.com/photonhq/photon/internal/tracing"
)

// DefaultExecutionTimeout is the remote execution bound in seconds.
const DefaultExecutionTimeout = 120

// Option configures a Machine.
type Option func(*Machine)

// WithExecutionTimeout overrides the remote execution bound. Values below one
// are ignored.
func WithExecutionTimeout(seconds int) Option {
	return func(m *Machine) {
		if seconds >= 1 {
			m.timeoutSeconds = seconds
		}
	}
}

// WithDefaultTitle sets the title sent when the form title is blank.
func WithDefaultTitle(title string) Option {
	return func(m *Machine) {
		if t := strings.TrimSpace(title); t != "" {
			m.defaultTitle = t
		}
	}
}

// WithTracer records submit and run as spans.
func WithTracer(t trace.Tracer) Option {
	return func(m *Machine) { m.tracer = t }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// Machine is one workflow instance. At most one request is in flight at a
// time; a second Submit or Run while one is outstanding fails with ErrBusy.
type Machine struct {
	gw             gateway.Gateway
	timeoutSeconds int
	defaultTitle   string
	tracer         trace.Tracer
	now            func() time.Time

	mu    sync.Mutex
	state State
	// epoch invalidates tickets issued before the last Reset.
	epoch uint64
}

// New creates an idle workflow backed by gw.
func New(gw gateway.Gateway, opts ...Option) *Machine {
	m := &Machine{
		gw:             gw,
		timeoutSeconds: DefaultExecutionTimeout,
		defaultTitle:   gateway.DefaultTitle,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tracer == nil {
		m.tracer = tracing.DefaultTracer()
	}
	m.state = State{ID: uuid.NewString(), Phase: PhaseIdle, Since: m.now()}
	return m
}

// ID returns the instance identifier used in logs and spans.
func (m *Machine) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ID
}

// State returns a snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// ExecutionTimeout returns the remote execution bound in seconds.
func (m *Machine) ExecutionTimeout() int {
	return m.timeoutSeconds
}

// transition must be called with mu held.
func (m *Machine) transition(to Phase) {
	from := m.state.Phase
	m.state.Phase = to
	m.state.Since = m.now()
	log.Debug(log.CatWorkflow, "transition", "id", m.state.ID, "from", from, "to", to)
}

// Reselect overwrites the form with ref. The phase does not change; the user
// must submit again to regenerate.
func (m *Machine) Reselect(ref dataset.Reference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Form = ref
	log.Debug(log.CatWorkflow, "form reselected", "id", m.state.ID, "url", ref.URL, "format", ref.Format)
}

// Reset discards everything and returns to Idle. Requests still in flight
// complete without effect.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.state = State{ID: m.state.ID, Phase: PhaseIdle, Since: m.now()}
	log.Debug(log.CatWorkflow, "reset", "id", m.state.ID)
}

// Submission is issued by BeginSubmit and redeemed by CompleteSubmit.
type Submission struct {
	epoch uint64
	// title is the form title before the default was applied.
	title string
	Ref   dataset.Reference
}

// BeginSubmit validates form and moves to Generating. The returned Submission
// carries the reference to send, with the default title applied.
func (m *Machine) BeginSubmit(form dataset.Reference) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase.InFlight() {
		return Submission{}, ErrBusy
	}
	if err := form.Validate(); err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	ref := form
	ref.URL = strings.TrimSpace(ref.URL)
	ref.Variable = strings.TrimSpace(ref.Variable)
	ref.Title = strings.TrimSpace(ref.Title)

	m.state.Form = form
	m.state.Err = nil
	m.state.ErrMessage = ""
	m.state.Warning = ""
	m.transition(PhaseGenerating)

	sent := ref
	if sent.Title == "" {
		sent.Title = m.defaultTitle
	}
	log.Info(log.CatWorkflow, "generating notebook", "id", m.state.ID, "url", sent.URL, "format", sent.Format, "variable", sent.Variable)
	return Submission{epoch: m.epoch, title: ref.Title, Ref: sent}, nil
}

// Generate performs the gateway call for sub without touching state.
func (m *Machine) Generate(ctx context.Context, sub Submission) (notebook.Artifact, error) {
	ctx, span := tracing.StartSpan(ctx, m.tracer, tracing.SpanPrefixWorkflow+"submit",
		attribute.String(tracing.AttrWorkflowID, m.ID()),
		attribute.String(tracing.AttrDatasetFormat, sub.Ref.Format.String()))
	art, err := m.gw.GenerateArtifact(ctx, sub.Ref)
	tracing.EndSpan(span, err)
	return art, err
}

// CompleteSubmit applies the outcome of a generate request. On failure the
// machine moves to Error and keeps the form, along with any notebook and
// result from an earlier successful submission.
func (m *Machine) CompleteSubmit(sub Submission, art notebook.Artifact, err error) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.epoch != m.epoch || m.state.Phase != PhaseGenerating {
		log.Debug(log.CatWorkflow, "stale submission ignored", "id", m.state.ID)
		return m.state.clone()
	}

	if err == nil && art.IsZero() {
		err = fmt.Errorf("%w: empty notebook", notebook.ErrMalformedArtifact)
	}
	if err != nil {
		m.state.Err = err
		m.state.ErrMessage = describe("generate workflow", err)
		m.transition(PhaseError)
		log.ErrorErr(log.CatWorkflow, "generation failed", err, "id", m.state.ID, "kind", gateway.KindOf(err))
		return m.state.clone()
	}

	m.state.Source = sub.Ref
	m.state.Source.Title = sub.title
	m.state.Artifact = art
	m.state.Result = nil
	m.state.Err = nil
	m.state.ErrMessage = ""
	m.state.Warning = ""
	m.transition(PhaseGenerated)
	log.Info(log.CatWorkflow, "notebook generated", "id", m.state.ID,
		"blocks", len(art.Blocks), "executable", art.Count(notebook.KindExecutable))
	return m.state.clone()
}

// Submit runs a full generate cycle. The returned error is non-nil only for
// precondition failures; request failures are reported through State.
func (m *Machine) Submit(ctx context.Context, form dataset.Reference) (State, error) {
	sub, err := m.BeginSubmit(form)
	if err != nil {
		return m.State(), err
	}
	art, gerr := m.Generate(ctx, sub)
	return m.CompleteSubmit(sub, art, gerr), nil
}

// Execution is issued by BeginRun and redeemed by CompleteRun.
type Execution struct {
	epoch          uint64
	Source         string
	TimeoutSeconds int
}

// BeginRun extracts the executable source and moves to Executing. The
// previous result and warning are discarded.
func (m *Machine) BeginRun() (Execution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase.InFlight() {
		return Execution{}, ErrBusy
	}
	if m.state.Artifact.IsZero() {
		return Execution{}, ErrNoArtifact
	}

	src := notebook.ExtractExecutableSource(m.state.Artifact)
	m.state.Result = nil
	m.state.Warning = ""
	m.state.Err = nil
	m.state.ErrMessage = ""
	m.transition(PhaseExecuting)
	log.Info(log.CatWorkflow, "executing notebook", "id", m.state.ID, "source_bytes", len(src), "timeout", m.timeoutSeconds)
	return Execution{epoch: m.epoch, Source: src, TimeoutSeconds: m.timeoutSeconds}, nil
}

// Execute performs the gateway call for ex without touching state.
func (m *Machine) Execute(ctx context.Context, ex Execution) (gateway.ExecutionResult, error) {
	ctx, span := tracing.StartSpan(ctx, m.tracer, tracing.SpanPrefixWorkflow+"run",
		attribute.String(tracing.AttrWorkflowID, m.ID()))
	res, err := m.gw.ExecuteCode(ctx, ex.Source, ex.TimeoutSeconds)
	var attrs []attribute.KeyValue
	if err == nil {
		attrs = append(attrs,
			attribute.Int(tracing.AttrExitCode, res.ExitCode),
			attribute.Int(tracing.AttrImageCount, len(res.Images)))
	}
	tracing.EndSpan(span, err, attrs...)
	return res, err
}

// CompleteRun applies the outcome of an execute request. A program that
// exited non-zero is still Executed; its stderr becomes Warning. A request
// failure moves to Error and leaves the notebook untouched.
func (m *Machine) CompleteRun(ex Execution, res gateway.ExecutionResult, err error) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ex.epoch != m.epoch || m.state.Phase != PhaseExecuting {
		log.Debug(log.CatWorkflow, "stale execution ignored", "id", m.state.ID)
		return m.state.clone()
	}

	if err != nil {
		m.state.Err = err
		m.state.ErrMessage = describe("execute workflow", err)
		m.transition(PhaseError)
		log.ErrorErr(log.CatWorkflow, "execution failed", err, "id", m.state.ID, "kind", gateway.KindOf(err))
		return m.state.clone()
	}

	if res.Images == nil {
		res.Images = []gateway.Image{}
	}
	m.state.Result = &res
	m.state.Warning = ExecutionWarning(res)
	m.transition(PhaseExecuted)
	log.Info(log.CatWorkflow, "execution finished", "id", m.state.ID,
		"exit_code", res.ExitCode, "images", len(res.Images))
	return m.state.clone()
}

// Run executes the current notebook. As with Submit, only precondition
// failures are returned as errors.
func (m *Machine) Run(ctx context.Context) (State, error) {
	ex, err := m.BeginRun()
	if err != nil {
		return m.State(), err
	}
	res, gerr := m.Execute(ctx, ex)
	return m.CompleteRun(ex, res, gerr), nil
}

// Truncate returns at most n user-perceived characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		if count == n {
			return s[:len(s)-len(rest)]
		}
		_, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		count++
	}
	return s
}
