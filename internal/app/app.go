// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel/trace"

	"github.com/photonhq/photon/internal/config"
	"github.com/photonhq/photon/internal/gateway"
	"github.com/photonhq/photon/internal/keys"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/mode"
	"github.com/photonhq/photon/internal/mode/search"
	"github.com/photonhq/photon/internal/mode/shared"
	workflowmode "github.com/photonhq/photon/internal/mode/workflow"
	"github.com/photonhq/photon/internal/pubsub"
	"github.com/photonhq/photon/internal/selection"
	"github.com/photonhq/photon/internal/ui/logoverlay"
	"github.com/photonhq/photon/internal/ui/overlay"
	"github.com/photonhq/photon/internal/ui/styles"
	"github.com/photonhq/photon/internal/ui/toaster"
	"github.com/photonhq/photon/internal/watcher"
	"github.com/photonhq/photon/internal/workflow"
)

// Options carries everything the root model needs from the command line.
type Options struct {
	// Ctx bounds every gateway call started from the UI.
	Ctx context.Context

	Gateway    gateway.Gateway
	Config     config.Config
	ConfigPath string

	// Debug enables the log overlay.
	Debug bool

	// Clipboard defaults to the system clipboard.
	Clipboard shared.Clipboard

	// Tracer records workflow spans when set.
	Tracer trace.Tracer
}

// Model is the root application state.
type Model struct {
	currentMode mode.AppMode
	search      search.Model
	workflow    workflowmode.Model

	services mode.Services

	width      int
	height     int
	showStatus bool
	showHelp   bool
	help       help.Model

	// Gateway health as of the last probe; nil until one completes.
	healthErr     error
	healthChecked bool

	toaster toaster.Model

	debugMode   bool
	logOverlay  logoverlay.Model
	logListener *log.LogListener

	selectionListener *pubsub.ContinuousListener[selection.Selection]

	watcherHandle   *watcher.Watcher
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.ContinuousListener[watcher.Change]

	cancel context.CancelFunc
}

// New creates the root model. The selection channel and workflow instance
// are created here and shared by both modes.
func New(opts Options) Model {
	parent := opts.Ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	cfg := opts.Config
	clip := opts.Clipboard
	if clip == nil {
		clip = shared.SystemClipboard{}
	}

	sel := selection.New()
	wfOpts := []workflow.Option{
		workflow.WithExecutionTimeout(cfg.Workflow.ExecutionTimeoutSeconds),
		workflow.WithDefaultTitle(cfg.Workflow.DefaultTitle),
	}
	if opts.Tracer != nil {
		wfOpts = append(wfOpts, workflow.WithTracer(opts.Tracer))
	}
	machine := workflow.New(opts.Gateway, wfOpts...)

	services := mode.Services{
		Ctx:        ctx,
		Gateway:    opts.Gateway,
		Selection:  sel,
		Workflow:   machine,
		Config:     &cfg,
		ConfigPath: opts.ConfigPath,
		Clipboard:  clip,
		Clock:      shared.RealClock{},
	}

	m := Model{
		currentMode:       mode.ModeSearch,
		search:            search.New(services),
		workflow:          workflowmode.New(services),
		services:          services,
		showStatus:        cfg.UI.ShowStatusBar,
		help:              help.New(),
		debugMode:         opts.Debug,
		logOverlay:        logoverlay.New(),
		selectionListener: pubsub.NewContinuousListener[selection.Selection](ctx, sel),
		cancel:            cancel,
	}
	if opts.Debug {
		for _, entry := range log.Recent() {
			m.logOverlay = m.logOverlay.Append(entry)
		}
		m.logListener = log.NewListener(ctx)
	}

	if cfg.AutoReload && opts.ConfigPath != "" {
		m.startWatcher(ctx, opts.ConfigPath)
	}
	return m
}

func (m *Model) startWatcher(ctx context.Context, path string) {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		log.Warn(log.CatWatcher, "config watcher unavailable", "path", path, "error", err)
		return
	}
	if err := w.Start(); err != nil {
		log.Warn(log.CatWatcher, "config watcher failed to start", "path", path, "error", err)
		_ = w.Stop()
		return
	}
	wctx, cancel := context.WithCancel(ctx)
	m.watcherHandle = w
	m.watcherCancel = cancel
	m.watcherListener = pubsub.NewContinuousListener[watcher.Change](wctx, w)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.search.Init(),
		m.selectionListener.Listen(),
		healthCmd(m.services),
	}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// healthMsg reports the outcome of the startup health probe.
type healthMsg struct{ err error }

func healthCmd(s mode.Services) tea.Cmd {
	gw := s.Gateway
	ctx := s.Context()
	return func() tea.Msg {
		if gw == nil {
			return healthMsg{err: gateway.ErrServiceUnavailable}
		}
		return healthMsg{err: gw.Health(ctx)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.resizeModes()
		m.logOverlay = m.logOverlay.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.logOverlay.Visible() || m.showHelp {
			return m, nil
		}
		return m.updateActive(msg)

	case log.LogEvent:
		m.logOverlay = m.logOverlay.Append(msg.Payload)
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()

	case logoverlay.CloseMsg:
		m.logOverlay = m.logOverlay.Hide()
		return m, nil

	case pubsub.Event[selection.Selection]:
		var cmd tea.Cmd
		m.workflow, cmd = m.workflow.Update(msg)
		return m, tea.Batch(cmd, m.selectionListener.Listen())

	case pubsub.Event[watcher.Change]:
		return m.handleConfigChange(msg)

	case healthMsg:
		m.healthChecked = true
		m.healthErr = msg.err
		if msg.err != nil {
			log.Warn(log.CatGateway, "health check failed", "error", msg.err)
			return m, mode.Toast("Services unreachable at "+m.services.Config.API.BaseURL, toaster.StyleWarn)
		}
		return m, nil

	case mode.SwitchModeMsg:
		return m.setMode(msg.Mode)

	case mode.ShowToastMsg:
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.ShowFor(msg.Message, msg.Style, toaster.DefaultDuration)
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil
	}

	// Responses may arrive after the user switched modes, so everything
	// that is not input goes to both controllers.
	var searchCmd, workflowCmd tea.Cmd
	m.search, searchCmd = m.search.Update(msg)
	m.workflow, workflowCmd = m.workflow.Update(msg)
	return m, tea.Batch(searchCmd, workflowCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Common.Quit) {
		return m, tea.Quit
	}
	if m.debugMode && key.Matches(msg, keys.App.ToggleLogs) {
		m.logOverlay = m.logOverlay.Toggle()
		return m, nil
	}
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}
	if m.showHelp {
		if key.Matches(msg, keys.Common.Help) || key.Matches(msg, keys.Common.Escape) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Common.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, keys.App.SearchMode):
		return m.setMode(mode.ModeSearch)
	case key.Matches(msg, keys.App.WorkflowMode):
		return m.setMode(mode.ModeWorkflow)
	case key.Matches(msg, keys.App.NextMode):
		if m.currentMode == mode.ModeSearch {
			return m.setMode(mode.ModeWorkflow)
		}
		return m.setMode(mode.ModeSearch)
	case key.Matches(msg, keys.App.ToggleStatus):
		m.showStatus = !m.showStatus
		return m.resizeModes(), nil
	}
	return m.updateActive(msg)
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentMode {
	case mode.ModeSearch:
		m.search, cmd = m.search.Update(msg)
	case mode.ModeWorkflow:
		m.workflow, cmd = m.workflow.Update(msg)
	}
	return m, cmd
}

func (m Model) setMode(to mode.AppMode) (tea.Model, tea.Cmd) {
	if to == m.currentMode {
		return m, nil
	}
	log.Info(log.CatMode, "switching mode", "from", m.currentMode, "to", to)
	m.currentMode = to
	if to == mode.ModeWorkflow {
		return m, m.workflow.Init()
	}
	return m, m.search.Init()
}

func (m Model) resizeModes() Model {
	h := m.height
	if m.showStatus {
		h--
	}
	h = max(h, 0)
	m.search = m.search.SetSize(m.width, h)
	m.workflow = m.workflow.SetSize(m.width, h)
	return m
}

// handleConfigChange reloads the config file and pushes the new API
// settings into the gateway. An invalid file keeps the current settings.
func (m Model) handleConfigChange(ev pubsub.Event[watcher.Change]) (tea.Model, tea.Cmd) {
	var relisten tea.Cmd
	if m.watcherListener != nil {
		relisten = m.watcherListener.Listen()
	}
	if ev.Payload.Removed {
		log.Warn(log.CatConfig, "config file removed", "path", ev.Payload.Path)
		return m, tea.Batch(relisten, mode.Toast("Config file removed; keeping current settings", toaster.StyleWarn))
	}

	cfg, err := config.Load(m.services.ConfigPath)
	if err != nil {
		log.ErrorErr(log.CatConfig, "config reload failed", err, "path", m.services.ConfigPath)
		return m, tea.Batch(relisten, mode.Toast("Config not reloaded: "+firstLine(err.Error()), toaster.StyleError))
	}

	if r, ok := m.services.Gateway.(gateway.Reconfigurer); ok {
		if err := r.Reconfigure(cfg.Gateway()); err != nil {
			log.ErrorErr(log.CatConfig, "gateway reconfigure failed", err)
			return m, tea.Batch(relisten, mode.Toast("Config not applied: "+err.Error(), toaster.StyleError))
		}
	}

	*m.services.Config = cfg
	m.showStatus = cfg.UI.ShowStatusBar
	m = m.resizeModes()
	log.Info(log.CatConfig, "config reloaded", "path", m.services.ConfigPath, "base_url", cfg.API.BaseURL)
	return m, tea.Batch(relisten, healthCmd(m.services), mode.Toast("Config reloaded", toaster.StyleSuccess))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var view string
	switch m.currentMode {
	case mode.ModeWorkflow:
		view = m.workflow.View()
	default:
		view = m.search.View()
	}
	if m.showStatus {
		view = lipgloss.JoinVertical(lipgloss.Left, view, m.statusBar())
	}

	if m.showHelp {
		view = overlay.Place(overlay.Screen{Width: m.width, Height: m.height}, overlay.Center, m.helpView(), view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}

	return zone.Scan(view)
}

func (m Model) statusBar() string {
	modeLabel := styles.TitleStyle.Render(strings.ToUpper(m.currentMode.String()))

	health := styles.MutedStyle.Render("○ checking")
	switch {
	case m.healthChecked && m.healthErr == nil:
		health = styles.SuccessStyle.Render("● online")
	case m.healthChecked:
		health = styles.WarningStyle.Render("○ offline")
	}

	st := m.workflow.State()
	phase := styles.MutedStyle.Render("workflow: " + st.Phase.Label())

	left := strings.Join([]string{modeLabel, health, styles.MutedStyle.Render(m.services.Config.API.BaseURL), phase}, "  ")
	right := styles.MutedStyle.Render("f1 help · f2 search · f3 workflow · ctrl+c quit")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return styles.StatusBarStyle.Width(m.width).MaxWidth(m.width).Render(left)
	}
	return styles.StatusBarStyle.Width(m.width).MaxWidth(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) helpView() string {
	groups := keys.SearchHelp()
	title := "Search keys"
	if m.currentMode == mode.ModeWorkflow {
		groups = keys.WorkflowHelp()
		title = "Workflow keys"
	}
	width := min(m.width-4, 100)
	m.help.Width = width - 4
	return styles.Panel{
		Title:   title,
		Hint:    "f1/esc close",
		Width:   width,
		Focused: true,
	}.Render(m.help.FullHelpView(groups))
}

// Mode returns the active mode.
func (m Model) Mode() mode.AppMode { return m.currentMode }

// Services returns the shared services, mainly for tests.
func (m Model) Services() mode.Services { return m.services }

// Close releases resources held by the application.
func (m *Model) Close() error {
	if m.watcherCancel != nil {
		m.watcherCancel()
	}
	var err error
	if m.watcherHandle != nil {
		if stopErr := m.watcherHandle.Stop(); stopErr != nil {
			err = fmt.Errorf("stopping config watcher: %w", stopErr)
		}
	}
	m.services.Selection.Close()
	if m.cancel != nil {
		m.cancel()
	}
	return err
}
