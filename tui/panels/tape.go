package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/marketlab/internal/sim/core"
	"github.com/zappabad/marketlab/tui/styles"
)

// TapePanel displays recent trade prints, newest first.
type TapePanel struct {
	frame   core.Snapshot
	focused bool
	width   int
	height  int
}

// NewTapePanel creates a new tape panel.
func NewTapePanel() *TapePanel {
	return &TapePanel{}
}

// Init initializes the panel.
func (p *TapePanel) Init() tea.Cmd { return nil }

// Update handles messages for the panel.
func (p *TapePanel) Update(msg tea.Msg) (*TapePanel, tea.Cmd) { return p, nil }

// SetFrame replaces the rendered snapshot.
func (p *TapePanel) SetFrame(f core.Snapshot) { p.frame = f }

// SetFocus sets the focus state.
func (p *TapePanel) SetFocus(f bool) { p.focused = f }

// SetSize sets the panel dimensions.
func (p *TapePanel) SetSize(w, h int) { p.width, p.height = w, h }

// View renders the panel.
func (p *TapePanel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Tape"))
	b.WriteString("\n")
	b.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("%-5s %8s %5s", "side", "qty", "bin")))
	b.WriteString("\n")

	prints := p.frame.Tape
	visible := p.height - 5
	if visible < 1 {
		visible = 1
	}
	if len(prints) > visible {
		prints = prints[len(prints)-visible:]
	}

	if len(prints) == 0 {
		b.WriteString(styles.MutedStyle.Render("no trades yet"))
	}

	// Newest at the top.
	for i := len(prints) - 1; i >= 0; i-- {
		pr := prints[i]
		row := fmt.Sprintf("%-5s %8.2f %5d", pr.Side, pr.Qty, pr.Bin)
		if pr.Side == core.SideBuy {
			b.WriteString(styles.BuyStyle.Render(row))
		} else {
			b.WriteString(styles.SellStyle.Render(row))
		}
		b.WriteString("\n")
	}

	return p.frameStyle().Width(p.width - 2).Height(p.height - 2).Render(b.String())
}

func (p *TapePanel) frameStyle() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
