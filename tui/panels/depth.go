package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/marketlab/internal/sim/core"
	"github.com/zappabad/marketlab/tui/styles"
)

// DepthPanel renders bid/ask volume bars in a window of bins around the price.
type DepthPanel struct {
	frame   core.Snapshot
	focused bool
	width   int
	height  int
}

// NewDepthPanel creates a new depth panel.
func NewDepthPanel() *DepthPanel {
	return &DepthPanel{}
}

// Init initializes the panel.
func (p *DepthPanel) Init() tea.Cmd { return nil }

// Update handles messages for the panel.
func (p *DepthPanel) Update(msg tea.Msg) (*DepthPanel, tea.Cmd) { return p, nil }

// SetFrame replaces the rendered snapshot.
func (p *DepthPanel) SetFrame(f core.Snapshot) { p.frame = f }

// SetFocus sets the focus state.
func (p *DepthPanel) SetFocus(f bool) { p.focused = f }

// SetSize sets the panel dimensions.
func (p *DepthPanel) SetSize(w, h int) { p.width, p.height = w, h }

// View renders the panel.
func (p *DepthPanel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Depth"))
	b.WriteString("\n")

	f := p.frame
	if f.Bins == 0 {
		b.WriteString(styles.MutedStyle.Render("waiting for data"))
		return p.frameStyle().Width(p.width - 2).Height(p.height - 2).Render(b.String())
	}

	rows := p.height - 4
	if rows < 3 {
		rows = 3
	}
	radius := rows / 2
	center := int(f.Price + 0.5)

	// Scale bars against the window maximum.
	maxVol := 0.0
	for i := center - radius; i <= center+radius; i++ {
		if i < 0 || i >= f.Bins {
			continue
		}
		if f.Bid[i] > maxVol {
			maxVol = f.Bid[i]
		}
		if f.Ask[i] > maxVol {
			maxVol = f.Ask[i]
		}
	}
	if maxVol == 0 {
		maxVol = 1
	}

	barWidth := (p.width - 16) / 2
	if barWidth < 4 {
		barWidth = 4
	}

	// High bins on top, like a ladder.
	for i := center + radius; i >= center-radius; i-- {
		if i < 0 || i >= f.Bins {
			b.WriteString("\n")
			continue
		}

		bidBar := int(f.Bid[i] / maxVol * float64(barWidth))
		askBar := int(f.Ask[i] / maxVol * float64(barWidth))

		left := styles.BuyStyle.Render(strings.Repeat("█", bidBar)) +
			strings.Repeat(" ", barWidth-bidBar)
		right := styles.SellStyle.Render(strings.Repeat("█", askBar)) +
			strings.Repeat(" ", barWidth-askBar)

		label := fmt.Sprintf("%4d", i)
		if i == center {
			label = styles.ValueStyle.Render(fmt.Sprintf("%4d", i))
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", label, " ", right))
		b.WriteString("\n")
	}

	b.WriteString(styles.HeaderStyle.Render(
		fmt.Sprintf("best bid %d  best ask %d  spread %.0f", f.BestBid, f.BestAsk, f.Spread)))

	return p.frameStyle().Width(p.width - 2).Height(p.height - 2).Render(b.String())
}

func (p *DepthPanel) frameStyle() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
