package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	simservice "github.com/zappabad/marketlab/internal/sim/service"
	"github.com/zappabad/marketlab/tui/panels"
	"github.com/zappabad/marketlab/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusDepth  PanelFocus = 0
	FocusChart  PanelFocus = 1
	FocusTape   PanelFocus = 2
	FocusPolicy PanelFocus = 3

	focusCount = 4
)

// Model is the main TUI application model.
type Model struct {
	sim *simservice.Service

	depthPanel  *panels.DepthPanel
	chartPanel  *panels.ChartPanel
	tapePanel   *panels.TapePanel
	statusPanel *panels.StatusPanel
	policyPanel *panels.PolicyPanel

	focusedPanel PanelFocus
	paused       bool

	width  int
	height int

	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model bound to a running simulation service.
func NewModel(sim *simservice.Service) *Model {
	return &Model{
		sim:          sim,
		depthPanel:   panels.NewDepthPanel(),
		chartPanel:   panels.NewChartPanel(),
		tapePanel:    panels.NewTapePanel(),
		statusPanel:  panels.NewStatusPanel(),
		policyPanel:  panels.NewPolicyPanel(sim.Snapshot().Policy),
		focusedPanel: FocusPolicy,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.tickRefresh()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case panels.PolicyChangedMsg:
		cmds = append(cmds, m.applyPolicy(msg))

	case commandResultMsg:
		m.statusMsg = msg.message

	case tickMsg:
		m.refreshData()
		cmds = append(cmds, m.tickRefresh())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

// handleKey processes global key bindings. It reports false for keys that
// belong to the focused panel (everything while the policy editor is open).
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()

	// Always available, even mid-edit.
	switch key {
	case "ctrl+c":
		return tea.Quit, true
	case "tab":
		m.cycleFocus(1)
		return nil, true
	case "shift+tab":
		m.cycleFocus(-1)
		return nil, true
	}

	// Everything else belongs to the policy panel while it has focus.
	if m.focusedPanel == FocusPolicy {
		return nil, false
	}

	switch key {
	case "q":
		return tea.Quit, true
	case " ":
		m.paused = !m.paused
		return m.setPaused(m.paused), true
	case "u":
		return m.triggerNews(1), true
	case "d":
		return m.triggerNews(-1), true
	case "r":
		return m.resetMarket(), true
	}
	return nil, false
}

func (m *Model) cycleFocus(delta PanelFocus) {
	m.focusedPanel = (m.focusedPanel + delta + focusCount) % focusCount
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusDepth:
		m.depthPanel, cmd = m.depthPanel.Update(msg)
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	case FocusTape:
		m.tapePanel, cmd = m.tapePanel.Update(msg)
	case FocusPolicy:
		m.policyPanel, cmd = m.policyPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) refreshData() {
	snap := m.sim.Snapshot()
	stats := m.sim.Stats()

	m.depthPanel.SetFrame(snap)
	m.chartPanel.SetFrame(snap, stats)
	m.tapePanel.SetFrame(snap)
	m.statusPanel.SetFrame(snap)
	m.policyPanel.SetPolicy(snap.Policy)
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.depthPanel.SetFocus(m.focusedPanel == FocusDepth)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)
	m.tapePanel.SetFocus(m.focusedPanel == FocusTape)
	m.statusPanel.SetFocus(false)
	m.policyPanel.SetFocus(m.focusedPanel == FocusPolicy)

	// Layout:
	// ┌──────────────┬───────────────────────┐
	// │    Depth     │        Chart          │
	// ├──────┬───────┴──────┬────────────────┤
	// │ Tape │    Market    │     Policy     │
	// └──────┴──────────────┴────────────────┘

	leftWidth := m.width * 2 / 5
	rightWidth := m.width - leftWidth

	topHeight := (m.height - 1) * 3 / 5
	bottomHeight := m.height - 1 - topHeight

	m.depthPanel.SetSize(leftWidth, topHeight)
	m.chartPanel.SetSize(rightWidth, topHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.depthPanel.View(),
		m.chartPanel.View(),
	)

	tapeWidth := m.width / 4
	statusWidth := m.width / 3
	policyWidth := m.width - tapeWidth - statusWidth

	m.tapePanel.SetSize(tapeWidth, bottomHeight)
	m.statusPanel.SetSize(statusWidth, bottomHeight)
	m.policyPanel.SetSize(policyWidth, bottomHeight)

	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.tapePanel.View(),
		m.statusPanel.View(),
		m.policyPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	help := []string{
		styles.StatusBarKeyStyle.Render("tab") + styles.StatusBarDescStyle.Render(" panels"),
		styles.StatusBarKeyStyle.Render("u/d") + styles.StatusBarDescStyle.Render(" news"),
		styles.StatusBarKeyStyle.Render("r") + styles.StatusBarDescStyle.Render(" reset"),
		styles.StatusBarKeyStyle.Render("space") + styles.StatusBarDescStyle.Render(" pause"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}

	helpStr := lipgloss.JoinHorizontal(lipgloss.Center,
		help[0], " │ ", help[1], " │ ", help[2], " │ ", help[3], " │ ", help[4])

	status := ""
	if m.paused {
		status = " │ " + styles.HaltStyle.Render("PAUSED")
	}
	if m.statusMsg != "" {
		status += " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(helpStr + status)
}

func (m *Model) applyPolicy(msg panels.PolicyChangedMsg) tea.Cmd {
	return func() tea.Msg {
		if err := m.sim.SetPolicy(context.Background(), msg.Policy); err != nil {
			return commandResultMsg{message: "policy update failed: " + err.Error()}
		}
		return commandResultMsg{message: "policy applied"}
	}
}

func (m *Model) triggerNews(dir float64) tea.Cmd {
	return func() tea.Msg {
		triggered, err := m.sim.TriggerNews(context.Background(), dir)
		if err != nil {
			return commandResultMsg{message: "news failed: " + err.Error()}
		}
		if !triggered {
			return commandResultMsg{message: "pulse already active"}
		}
		arrow := "▲"
		if dir < 0 {
			arrow = "▼"
		}
		return commandResultMsg{message: "news pulse " + arrow}
	}
}

func (m *Model) resetMarket() tea.Cmd {
	return func() tea.Msg {
		if err := m.sim.Reset(context.Background()); err != nil {
			return commandResultMsg{message: "reset failed: " + err.Error()}
		}
		return commandResultMsg{message: "market reset"}
	}
}

func (m *Model) setPaused(pause bool) tea.Cmd {
	return func() tea.Msg {
		if err := m.sim.SetPaused(context.Background(), pause); err != nil {
			return commandResultMsg{message: "pause failed: " + err.Error()}
		}
		if pause {
			return commandResultMsg{message: "simulation paused"}
		}
		return commandResultMsg{message: "simulation running"}
	}
}

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// commandResultMsg is sent after a simulation command is processed.
type commandResultMsg struct {
	message string
}
