// Package tui renders a drawing session in the terminal with Bubble Tea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/session"
)

// cardsShown is how many individual card probabilities are listed before the
// rest are summarised
const cardsShown = 5

const (
	barWidth     = 16
	cardsPerLine = 12
)

// Session is the part of the controller the UI drives
type Session interface {
	DrawOne() (deck.Card, bool)
	ToggleSimulation() bool
	Reset()
	Snapshot() session.Snapshot
}

// SnapshotMsg carries a session change into the Bubble Tea loop
type SnapshotMsg session.Snapshot

// Model is the Bubble Tea model for a drawing session
type Model struct {
	session Session
	logger  *log.Logger
	snap    session.Snapshot

	keys keyMap
	help help.Model

	history  viewport.Model
	redBar   progress.Model
	blackBar progress.Model
	rankBar  progress.Model
	cardBar  progress.Model

	width    int
	height   int
	quitting bool
}

// NewModel creates a model bound to a session
func NewModel(s Session, logger *log.Logger) *Model {
	bar := func(color string) progress.Model {
		return progress.New(
			progress.WithSolidFill(color),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		)
	}

	m := &Model{
		session:  s,
		logger:   logger.WithPrefix("tui"),
		snap:     s.Snapshot(),
		keys:     newKeyMap(),
		help:     help.New(),
		history:  viewport.New(10, 5),
		redBar:   bar(colorRed),
		blackBar: bar(colorBlack),
		rankBar:  bar(colorRank),
		cardBar:  bar(colorCard),
	}
	m.keys.setExhausted(m.snap.Exhausted())
	return m
}

// Listen forwards every session change to the program. The returned func
// stops forwarding.
func Listen(p *tea.Program, s interface {
	Subscribe(session.Listener) func()
}) func() {
	return s.Subscribe(func(snap session.Snapshot) {
		// Send blocks until the loop reads it; never hold up the caller.
		go p.Send(SnapshotMsg(snap))
	})
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.apply(session.Snapshot(msg))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeHistory()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Draw):
			if card, ok := m.session.DrawOne(); ok {
				m.logger.Debug("Drew card", "card", card)
			}
			m.apply(m.session.Snapshot())
			return m, nil
		case key.Matches(msg, m.keys.Toggle):
			running := m.session.ToggleSimulation()
			m.logger.Debug("Toggled auto-draw", "running", running)
			m.apply(m.session.Snapshot())
			return m, nil
		case key.Matches(msg, m.keys.Reset):
			m.session.Reset()
			m.apply(m.session.Snapshot())
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

// apply takes a snapshot unless a newer one is already shown
func (m *Model) apply(snap session.Snapshot) {
	if snap.Version < m.snap.Version {
		return
	}
	m.snap = snap
	m.keys.setExhausted(snap.Exhausted())
	m.history.SetContent(m.renderHistory())
	if m.history.Height > 0 && m.history.Width > 0 {
		m.history.GotoBottom()
	}
}

func (m *Model) resizeHistory() {
	w := m.width/2 - 4
	h := m.height - 22
	if w < 10 {
		w = 10
	}
	if h < 3 {
		h = 3
	}
	m.history.Width = w
	m.history.Height = h
	m.history.SetContent(m.renderHistory())
	m.history.GotoBottom()
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		PaneStyle.Render(m.renderSuitOdds()),
		PaneStyle.Render(m.renderRankOdds()),
		PaneStyle.Render(m.renderCardOdds()),
	))
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		PaneStyle.Render(m.renderRemaining()),
		PaneStyle.Render(SectionStyle.Render(fmt.Sprintf("Drawn cards (%d)", len(m.snap.Drawn)))+"\n"+m.history.View()),
	))
	b.WriteString("\n")

	if m.snap.Exhausted() {
		b.WriteString(BannerStyle.Render(m.renderFinished()))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderHeader() string {
	title := HeaderStyle.Render(" ♠ ♥ Card Draw Simulator ♦ ♣ ")
	remaining := WarningStyle.Render(fmt.Sprintf("Remaining: %d", m.snap.Remaining))

	auto := InfoStyle.Render("Auto-draw: off")
	if m.snap.Simulating {
		auto = SuccessStyle.Render("Auto-draw: on")
	}
	return title + "  " + remaining + "  " + auto
}

func (m *Model) renderSuitOdds() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Suit odds"))
	for _, so := range m.snap.Probabilities.SuitList() {
		bar := m.blackBar
		label := BlackCardStyle.Render(so.Suit.String())
		if so.Suit.IsRed() {
			bar = m.redBar
			label = RedCardStyle.Render(so.Suit.String())
		}
		fmt.Fprintf(&b, "\n%s %s %s", label, formatPercent(so.Probability), bar.ViewAs(so.Probability))
	}
	return b.String()
}

func (m *Model) renderRankOdds() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Rank odds"))
	for _, ro := range m.snap.Probabilities.RankList() {
		fmt.Fprintf(&b, "\n%-2s %s %s", ro.Rank, formatPercent(ro.Probability), m.rankBar.ViewAs(ro.Probability))
	}
	return b.String()
}

func (m *Model) renderCardOdds() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Card odds"))
	for _, co := range m.snap.Probabilities.CardList(cardsShown) {
		fmt.Fprintf(&b, "\n%s %s %s", formatCard(co.Card), formatPercent(co.Probability), m.cardBar.ViewAs(co.Probability))
	}
	if extra := len(m.snap.Probabilities.Cards) - cardsShown; extra > 0 {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render(fmt.Sprintf("...and %d more cards", extra)))
	}
	return b.String()
}

func (m *Model) renderRemaining() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Remaining cards"))
	for _, s := range deck.Suits {
		ranks := m.snap.Ranks(s)
		if len(ranks) == 0 {
			continue
		}
		cards := make([]string, len(ranks))
		for i, r := range ranks {
			c := deck.NewCard(s, r)
			cards[i] = cardShade(m.snap.Probabilities.Card(c)).Render(c.String())
		}
		fmt.Fprintf(&b, "\n%s (left: %d) %s", s, len(ranks), strings.Join(cards, " "))
	}
	return b.String()
}

func (m *Model) renderHistory() string {
	if len(m.snap.Drawn) == 0 {
		return InfoStyle.Render("No cards drawn yet")
	}

	var lines []string
	for start := 0; start < len(m.snap.Drawn); start += cardsPerLine {
		end := min(start+cardsPerLine, len(m.snap.Drawn))
		cards := make([]string, 0, end-start)
		for _, c := range m.snap.Drawn[start:end] {
			cards = append(cards, formatCard(c))
		}
		lines = append(lines, strings.Join(cards, " "))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFinished() string {
	return SuccessStyle.Render("All cards drawn!") + "\n" +
		fmt.Sprintf("Total cards drawn: %d", len(m.snap.Drawn))
}

// formatCard colours red suits
func formatCard(c deck.Card) string {
	if c.IsRed() {
		return RedCardStyle.Render(c.String())
	}
	return BlackCardStyle.Render(c.String())
}

// formatPercent renders a probability with two decimals, e.g. "25.00%"
func formatPercent(p float64) string {
	return fmt.Sprintf("%6.2f%%", p*100)
}
