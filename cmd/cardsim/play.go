package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/cardsim/cmd/cardsim/shared"
	"github.com/lox/cardsim/internal/tui"
)

// defaultPlayLog is where play logs when neither flag nor config names a file
const defaultPlayLog = "cardsim.log"

// PlayCmd runs the interactive terminal UI
type PlayCmd struct {
	LogFile string `kong:"help='Log file (the terminal is used by the UI, default cardsim.log)'"`
	NoColor bool   `kong:"help='Disable colours'"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	logFile, err := shared.OpenLogFile(playLogPath(c.LogFile, cfg.Log.File))
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger, err := shared.SetupLogger(logFile, cfg.Log.Level)
	if err != nil {
		return err
	}
	logger = logger.WithPrefix("play")

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	ctrl, _ := newSession(cfg, logger)
	defer ctrl.StopSimulation()

	p := tea.NewProgram(tui.NewModel(ctrl, logger), tea.WithAltScreen())
	stop := tui.Listen(p, ctrl)
	defer stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	logger.Info("Session ended", "remaining", ctrl.Remaining(), "drawn", len(ctrl.Drawn()))
	return nil
}

// playLogPath picks the log file: flag, then config, then the default
func playLogPath(flag, configured string) string {
	switch {
	case flag != "":
		return flag
	case configured != "":
		return configured
	default:
		return defaultPlayLog
	}
}
