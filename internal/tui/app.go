// Package tui is a small scrollable viewer for the rendered forecast.
package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type App struct {
	viewport viewport.Model
	content  string
	ready    bool
}

func NewApp(content string) *App {
	return &App{content: content}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := 1
		if !a.ready {
			a.viewport = viewport.New(msg.Width, msg.Height-headerHeight)
			a.viewport.SetContent(a.content)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = msg.Height - headerHeight
		}
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if !a.ready {
		return "loading..."
	}
	return a.viewport.View() + "\n" + helpStyle.Render("↑/↓ scroll · q quit")
}
