package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/invoicer/internal/app"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/status"
)

// model hosts the console and quits when it asks to go back.
type model struct {
	console view.ConsoleModel
}

func (m model) Init() tea.Cmd {
	return m.console.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		return m, tea.Quit
	}

	next, cmd := m.console.Update(msg)
	m.console = next.(view.ConsoleModel)

	return m, cmd
}

func (m model) View() string {
	return m.console.View()
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the program, so logs go to a file.
	logFile, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "path", cfg.App.LogFile, "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	bridge := &view.Bridge{}

	a, err := app.New(cfg, app.Overrides{
		Notifiers: []status.Notifier{bridge},
		Prompt:    bridge,
	})
	if err != nil {
		slog.Error("failed to build services", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model{
		console: view.NewConsoleModel(a.Transactions, a.Orchestrator, cfg.App.Role),
	}, tea.WithAltScreen())
	bridge.Attach(p.Send)

	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
