package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/marketlab/internal/sim/core"
	"github.com/zappabad/marketlab/internal/sim/view"
	"github.com/zappabad/marketlab/tui/styles"
)

// ChartPanel renders the retained price history as a column chart.
type ChartPanel struct {
	frame   core.Snapshot
	stats   view.Stats
	focused bool
	width   int
	height  int
}

// NewChartPanel creates a new chart panel.
func NewChartPanel() *ChartPanel {
	return &ChartPanel{}
}

// Init initializes the panel.
func (p *ChartPanel) Init() tea.Cmd { return nil }

// Update handles messages for the panel.
func (p *ChartPanel) Update(msg tea.Msg) (*ChartPanel, tea.Cmd) { return p, nil }

// SetFrame replaces the rendered snapshot and stats.
func (p *ChartPanel) SetFrame(f core.Snapshot, st view.Stats) {
	p.frame = f
	p.stats = st
}

// SetFocus sets the focus state.
func (p *ChartPanel) SetFocus(f bool) { p.focused = f }

// SetSize sets the panel dimensions.
func (p *ChartPanel) SetSize(w, h int) { p.width, p.height = w, h }

// View renders the panel.
func (p *ChartPanel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Price"))
	b.WriteString("  ")
	b.WriteString(styles.ValueStyle.Render(fmt.Sprintf("%.2f", p.frame.Price)))

	vel := fmt.Sprintf(" %+.2f/s", p.frame.Velocity)
	if p.frame.Velocity >= 0 {
		b.WriteString(styles.BuyStyle.Render(vel))
	} else {
		b.WriteString(styles.SellStyle.Render(vel))
	}
	b.WriteString("\n")

	history := p.frame.History
	rows := p.height - 5
	cols := p.width - 6
	if rows < 2 {
		rows = 2
	}
	if cols < 4 {
		cols = 4
	}
	if len(history) > cols {
		history = history[len(history)-cols:]
	}

	if len(history) < 2 {
		b.WriteString(styles.MutedStyle.Render("collecting history"))
	} else {
		lo, hi := history[0], history[0]
		for _, v := range history {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		span := hi - lo
		if span == 0 {
			span = 1
		}

		grid := make([][]rune, rows)
		for r := range grid {
			grid[r] = make([]rune, len(history))
			for c := range grid[r] {
				grid[r][c] = ' '
			}
		}
		for c, v := range history {
			level := int((v - lo) / span * float64(rows-1))
			for r := 0; r <= level; r++ {
				grid[rows-1-r][c] = '▪'
			}
		}

		for r, line := range grid {
			prefix := "      "
			if r == 0 {
				prefix = fmt.Sprintf("%5.1f ", hi)
			} else if r == rows-1 {
				prefix = fmt.Sprintf("%5.1f ", lo)
			}
			b.WriteString(styles.MutedStyle.Render(prefix))
			b.WriteString(lipgloss.NewStyle().Foreground(styles.PrimaryColor).Render(string(line)))
			b.WriteString("\n")
		}
	}

	b.WriteString(styles.HeaderStyle.Render(fmt.Sprintf(
		"hi %.1f  lo %.1f  vol %.4f  ret %+.4f",
		p.stats.High, p.stats.Low, p.stats.Volatility, p.stats.LastReturn)))

	return p.frameStyle().Width(p.width - 2).Height(p.height - 2).Render(b.String())
}

func (p *ChartPanel) frameStyle() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
