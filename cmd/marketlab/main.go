package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zappabad/marketlab/internal/game"
	"github.com/zappabad/marketlab/tui"
)

func main() {
	cfg := game.DefaultConfig()

	g := game.NewGame(cfg)
	defer g.Close()

	model := tui.NewModel(g.Sim)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
