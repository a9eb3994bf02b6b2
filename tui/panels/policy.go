package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/marketlab/internal/sim/core"
	"github.com/zappabad/marketlab/tui/styles"
)

// PolicyChangedMsg is emitted when the user commits a lever edit.
type PolicyChangedMsg struct {
	Policy core.Policy
}

type fieldKind int

const (
	fieldFloat fieldKind = iota
	fieldInt
	fieldBool
)

type policyField struct {
	name string
	kind fieldKind
	get  func(p core.Policy) string
	set  func(p *core.Policy, raw string) error
}

func floatField(name string, get func(p core.Policy) float64, set func(p *core.Policy, v float64)) policyField {
	return policyField{
		name: name,
		kind: fieldFloat,
		get:  func(p core.Policy) string { return strconv.FormatFloat(get(p), 'g', 4, 64) },
		set: func(p *core.Policy, raw string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return err
			}
			set(p, v)
			return nil
		},
	}
}

var policyFields = []policyField{
	floatField("tax", func(p core.Policy) float64 { return p.Tax }, func(p *core.Policy, v float64) { p.Tax = v }),
	floatField("spread floor", func(p core.Policy) float64 { return p.SpreadFloor }, func(p *core.Policy, v float64) { p.SpreadFloor = v }),
	floatField("breaker pct", func(p core.Policy) float64 { return p.BreakerPct }, func(p *core.Policy, v float64) { p.BreakerPct = v }),
	floatField("breaker window", func(p core.Policy) float64 { return p.BreakerWindow }, func(p *core.Policy, v float64) { p.BreakerWindow = v }),
	floatField("breaker cooldown", func(p core.Policy) float64 { return p.BreakerCooldown }, func(p *core.Policy, v float64) { p.BreakerCooldown = v }),
	floatField("rebate", func(p core.Policy) float64 { return p.Rebate }, func(p *core.Policy, v float64) { p.Rebate = v }),
	floatField("news rate", func(p core.Policy) float64 { return p.NewsRate }, func(p *core.Policy, v float64) { p.NewsRate = v }),
	floatField("news strength", func(p core.Policy) float64 { return p.NewsStrength }, func(p *core.Policy, v float64) { p.NewsStrength = v }),
	floatField("noise scale", func(p core.Policy) float64 { return p.NoiseScale }, func(p *core.Policy, v float64) { p.NoiseScale = v }),
	{
		name: "population",
		kind: fieldInt,
		get:  func(p core.Policy) string { return strconv.Itoa(p.Population) },
		set: func(p *core.Policy, raw string) error {
			v, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			p.Population = v
			return nil
		},
	},
	{
		name: "reduced workload",
		kind: fieldBool,
		get: func(p core.Policy) string {
			if p.ReducedWorkload {
				return "on"
			}
			return "off"
		},
		set: func(p *core.Policy, raw string) error {
			p.ReducedWorkload = !p.ReducedWorkload
			return nil
		},
	},
}

// PolicyPanel lets the user inspect and edit the policy levers.
type PolicyPanel struct {
	policy   core.Policy
	selected int
	editing  bool
	input    textinput.Model
	errMsg   string

	focused bool
	width   int
	height  int
}

// NewPolicyPanel creates a new policy panel with the given initial levers.
func NewPolicyPanel(p core.Policy) *PolicyPanel {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 12
	return &PolicyPanel{
		policy: p,
		input:  ti,
	}
}

// Init initializes the panel.
func (p *PolicyPanel) Init() tea.Cmd { return nil }

// SetPolicy replaces the displayed levers, unless an edit is in flight.
func (p *PolicyPanel) SetPolicy(pol core.Policy) {
	if !p.editing {
		p.policy = pol
	}
}

// SetFocus sets the focus state.
func (p *PolicyPanel) SetFocus(f bool) {
	p.focused = f
	if !f {
		p.cancelEdit()
	}
}

// SetSize sets the panel dimensions.
func (p *PolicyPanel) SetSize(w, h int) { p.width, p.height = w, h }

func (p *PolicyPanel) cancelEdit() {
	p.editing = false
	p.input.Blur()
	p.input.SetValue("")
}

// Update handles messages for the panel.
func (p *PolicyPanel) Update(msg tea.Msg) (*PolicyPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	if p.editing {
		switch keyMsg.String() {
		case "esc":
			p.cancelEdit()
			return p, nil
		case "enter":
			field := policyFields[p.selected]
			next := p.policy
			if err := field.set(&next, p.input.Value()); err != nil {
				p.errMsg = "invalid value"
				p.cancelEdit()
				return p, nil
			}
			p.errMsg = ""
			p.policy = next.Normalize()
			p.cancelEdit()
			pol := p.policy
			return p, func() tea.Msg { return PolicyChangedMsg{Policy: pol} }
		default:
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}
	}

	switch keyMsg.String() {
	case "up", "k":
		if p.selected > 0 {
			p.selected--
		}
	case "down", "j":
		if p.selected < len(policyFields)-1 {
			p.selected++
		}
	case "enter":
		field := policyFields[p.selected]
		if field.kind == fieldBool {
			next := p.policy
			field.set(&next, "")
			p.policy = next.Normalize()
			pol := p.policy
			return p, func() tea.Msg { return PolicyChangedMsg{Policy: pol} }
		}
		p.editing = true
		p.errMsg = ""
		p.input.SetValue(field.get(p.policy))
		p.input.CursorEnd()
		return p, p.input.Focus()
	}
	return p, nil
}

// View renders the panel.
func (p *PolicyPanel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Policy"))
	b.WriteString("\n")

	for i, field := range policyFields {
		val := field.get(p.policy)
		if p.editing && i == p.selected {
			val = p.input.View()
		}

		row := fmt.Sprintf("%-17s %s", field.name, styles.ValueStyle.Render(val))
		if i == p.selected && p.focused {
			row = styles.SelectedRowStyle.Render("> ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if p.errMsg != "" {
		b.WriteString(styles.SellStyle.Render(p.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedStyle.Render("enter edit/toggle · esc cancel"))

	return p.frameStyle().Width(p.width - 2).Height(p.height - 2).Render(b.String())
}

func (p *PolicyPanel) frameStyle() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
