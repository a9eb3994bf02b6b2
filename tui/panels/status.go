package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/marketlab/internal/sim/core"
	"github.com/zappabad/marketlab/tui/styles"
)

// StatusPanel shows the news pulse and circuit-breaker state.
type StatusPanel struct {
	frame   core.Snapshot
	focused bool
	width   int
	height  int
}

// NewStatusPanel creates a new status panel.
func NewStatusPanel() *StatusPanel {
	return &StatusPanel{}
}

// Init initializes the panel.
func (p *StatusPanel) Init() tea.Cmd { return nil }

// Update handles messages for the panel.
func (p *StatusPanel) Update(msg tea.Msg) (*StatusPanel, tea.Cmd) { return p, nil }

// SetFrame replaces the rendered snapshot.
func (p *StatusPanel) SetFrame(f core.Snapshot) { p.frame = f }

// SetFocus sets the focus state.
func (p *StatusPanel) SetFocus(f bool) { p.focused = f }

// SetSize sets the panel dimensions.
func (p *StatusPanel) SetSize(w, h int) { p.width, p.height = w, h }

func gauge(v float64, width int) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	filled := int(v * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// View renders the panel.
func (p *StatusPanel) View() string {
	f := p.frame
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Market"))
	b.WriteString("\n")

	gw := p.width - 18
	if gw < 6 {
		gw = 6
	}

	// News line: direction arrow plus intensity gauge.
	arrow := styles.MutedStyle.Render("·")
	if f.News.Active > 0 {
		if f.News.Dir > 0 {
			arrow = styles.BuyStyle.Render("▲")
		} else {
			arrow = styles.SellStyle.Render("▼")
		}
	}
	b.WriteString(fmt.Sprintf("news %s %s %.2f\n", arrow, gauge(f.News.Active, gw), f.News.Active))

	// Breaker line.
	switch {
	case f.Breaker.Halted:
		b.WriteString(styles.HaltStyle.Render(fmt.Sprintf("HALT %.1fs", f.Breaker.Frozen)))
	case f.Breaker.Cooldown > 0:
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("cooldown %.1fs", f.Breaker.Cooldown)))
	default:
		b.WriteString(styles.BuyStyle.Render("armed"))
	}
	b.WriteString("\n")

	b.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("agents %d  tick %d", f.Population, f.Tick)))

	return p.frameStyle().Width(p.width - 2).Height(p.height - 2).Render(b.String())
}

func (p *StatusPanel) frameStyle() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
