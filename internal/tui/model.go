// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okalkan/diziquiz/internal/bank"
	"github.com/okalkan/diziquiz/internal/history"
	"github.com/okalkan/diziquiz/internal/identity"
	"github.com/okalkan/diziquiz/internal/model"
	"github.com/okalkan/diziquiz/internal/session"
)

type phase int

const (
	phaseLogin phase = iota
	phaseQuiz
	phaseResult
)

var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	optionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	cursorOptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	wrongStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	timerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	timerLowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errMsgStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	verdictStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	scoreLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// tickMsg carries the question generation it was armed for; ticks from a
// previous question are dropped so a stale timer can never mutate the
// next question's state.
type tickMsg struct {
	gen int
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	cfg        model.Config
	bank       *bank.Bank
	identities *identity.Store
	attempts   *history.Store

	phase    phase
	user     model.Identity
	engine   *session.Engine
	gen      int
	cursor   int
	recorded bool

	input    textinput.Model
	loginErr string
	progress progress.Model

	width  int
	height int
}

// NewModel constructs the quiz UI. When user is non-nil the login screen
// is skipped.
func NewModel(cfg model.Config, b *bank.Bank, identities *identity.Store, attempts *history.Store, user *model.Identity) (*Model, error) {
	input := textinput.New()
	input.Prompt = "Kullanıcı adı: "
	input.Placeholder = "en az 2 karakter"
	input.CharLimit = 20
	input.Focus()

	m := &Model{
		cfg:        cfg,
		bank:       b,
		identities: identities,
		attempts:   attempts,
		phase:      phaseLogin,
		input:      input,
		progress:   progress.New(progress.WithDefaultGradient()),
	}
	if user != nil {
		m.user = *user
		if err := m.startRun(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Model) startRun() error {
	engine, err := session.New(m.bank.Questions(), m.cfg.TimerSeconds)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	m.engine = engine
	m.phase = phaseQuiz
	m.cursor = 0
	m.recorded = false
	m.gen++
	return nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.phase == phaseQuiz {
		return tickCmd(m.gen)
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = contentWidth(m.width)
		return m, nil
	case tickMsg:
		return m.updateTick(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.phase {
		case phaseLogin:
			return m.updateLogin(msg)
		case phaseQuiz:
			return m.updateQuiz(msg)
		default:
			return m.updateResult(msg)
		}
	default:
		return m, nil
	}
}

func (m *Model) updateTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if m.phase != phaseQuiz || msg.gen != m.gen {
		return m, nil
	}
	timedOut := m.engine.Tick()
	if _, ok := m.engine.Result(); ok {
		m.finishRun()
		return m, nil
	}
	if timedOut {
		// The timeout advanced to a fresh question; re-arm the timer.
		m.gen++
		m.cursor = 0
		return m, tickCmd(m.gen)
	}
	if m.engine.Phase() == session.PhaseUnanswered {
		return m, tickCmd(m.gen)
	}
	// Answered: the chain stops until the user advances.
	return m, nil
}

func (m *Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		username, err := identity.ValidateUsername(m.input.Value())
		if err != nil {
			m.loginErr = "Kullanıcı adı 2-20 karakter olmalı"
			return m, nil
		}
		id, err := m.identities.Login(context.Background(), username)
		if err != nil {
			m.loginErr = "Giriş kaydedilemedi"
			logErrf("failed to save identity: %v\n", err)
			return m, nil
		}
		m.user = id
		m.loginErr = ""
		if err := m.startRun(); err != nil {
			logErrf("failed to start quiz: %v\n", err)
			return m, tea.Quit
		}
		return m, tickCmd(m.gen)
	case tea.KeyEsc:
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	optionCount := len(m.engine.Question().Options)
	switch msg.String() {
	case "up", "k":
		if m.engine.Phase() == session.PhaseUnanswered && m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.engine.Phase() == session.PhaseUnanswered && m.cursor < optionCount-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if m.engine.Phase() == session.PhaseUnanswered {
			m.selectOption(m.cursor)
			return m, nil
		}
		return m.advance()
	case "q":
		return m, tea.Quit
	}
	if option, ok := optionIndexForKey(msg.String(), optionCount); ok {
		m.selectOption(option)
	}
	return m, nil
}

func (m *Model) selectOption(option int) {
	if err := m.engine.Select(option); err != nil {
		// Out-of-range selections are rejected without mutation.
		return
	}
	m.cursor = option
}

func (m *Model) advance() (tea.Model, tea.Cmd) {
	if err := m.engine.Advance(); err != nil {
		return m, nil
	}
	if _, ok := m.engine.Result(); ok {
		m.finishRun()
		return m, nil
	}
	m.gen++
	m.cursor = 0
	return m, tickCmd(m.gen)
}

func (m *Model) finishRun() {
	m.phase = phaseResult
	m.gen++
	res, ok := m.engine.Result()
	if !ok || m.recorded {
		return
	}
	m.recorded = true
	if err := m.attempts.RecordAttempt(context.Background(), m.user.Username, res); err != nil {
		// Best-effort persistence: the result screen still shows.
		logErrf("failed to save attempt: %v\n", err)
	}
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		if err := m.startRun(); err != nil {
			logErrf("failed to restart quiz: %v\n", err)
			return m, tea.Quit
		}
		return m, tickCmd(m.gen)
	case "q", "enter", "esc":
		return m, tea.Quit
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.phase {
	case phaseLogin:
		body = m.viewLogin()
	case phaseQuiz:
		body = m.viewQuiz()
	default:
		body = m.viewResult()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) viewLogin() string {
	lines := []string{
		titleStyle.Render("Yaprak Dökümü Bilgi Yarışması"),
		"",
		m.input.View(),
	}
	if m.loginErr != "" {
		lines = append(lines, errMsgStyle.Render(m.loginErr))
	}
	lines = append(lines, "", footerStyle.Render("enter giriş · esc çıkış"))
	return strings.Join(lines, "\n")
}

func (m *Model) viewQuiz() string {
	question := m.engine.Question()
	width := contentWidth(m.width)

	header := fmt.Sprintf("Soru %d/%d  ·  Skor %d  ·  %s",
		m.engine.Index()+1, m.engine.Total(), m.engine.Score(), m.renderTimer())
	bar := m.progress.ViewAs(float64(m.engine.Index()+1) / float64(m.engine.Total()))

	lines := []string{
		dimStyle.Render(header),
		bar,
		"",
		questionStyle.Width(width).Render(question.Text),
		"",
	}
	for i, option := range question.Options {
		lines = append(lines, m.renderOption(i, option, question.Correct))
	}
	lines = append(lines, "", footerStyle.Render(m.quizFooter()))
	return strings.Join(lines, "\n")
}

func (m *Model) renderTimer() string {
	remaining := m.engine.TimeRemaining()
	label := fmt.Sprintf("%ds", remaining)
	if remaining <= 5 {
		return timerLowStyle.Render(label)
	}
	return timerStyle.Render(label)
}

func (m *Model) renderOption(i int, option string, correct int) string {
	label := fmt.Sprintf("%c) %s", 'A'+i, option)
	if m.engine.Phase() == session.PhaseUnanswered {
		if i == m.cursor {
			return cursorOptStyle.Render("> " + label)
		}
		return optionStyle.Render("  " + label)
	}
	switch {
	case i == correct:
		return correctStyle.Render("  " + label + " ✓")
	case i == m.engine.Selected():
		return wrongStyle.Render("  " + label + " ✗")
	default:
		return dimStyle.Render("  " + label)
	}
}

func (m *Model) quizFooter() string {
	if m.engine.Phase() == session.PhaseUnanswered {
		return "a-d/1-9 veya ↑↓+enter cevap · q çıkış"
	}
	if m.engine.Index() == m.engine.Total()-1 {
		return "enter sonuçları gör"
	}
	return "enter sonraki soru"
}

func (m *Model) viewResult() string {
	res, ok := m.engine.Result()
	if !ok {
		return ""
	}
	lines := []string{
		titleStyle.Render("Tebrikler!"),
		"",
		fmt.Sprintf("%s %d / %d (%%%d)", scoreLabelStyle.Render("Skor:"), res.Score, res.Total, res.Percentage),
		verdictStyle.Render(verdict(res.Percentage)),
		"",
		footerStyle.Render("r tekrar oyna · q çıkış"),
	}
	return strings.Join(lines, "\n")
}

func verdict(percentage int) string {
	switch {
	case percentage >= 80:
		return "Yaprak Dökümü uzmanısınız!"
	case percentage >= 50:
		return "Fena değil, tekrar izleme vakti!"
	default:
		return "Diziyi tekrar izlemenizi öneririz!"
	}
}

// optionIndexForKey maps 1-9 and a-d keys onto option indexes.
func optionIndexForKey(key string, optionCount int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var option int
	switch {
	case c >= '1' && c <= '9':
		option = int(c - '1')
	case c >= 'a' && c <= 'd':
		option = int(c - 'a')
	default:
		return 0, false
	}
	if option >= optionCount {
		return 0, false
	}
	return option, true
}

func contentWidth(width int) int {
	if width == 0 {
		return 60
	}
	w := int(float64(width) * 0.70)
	if w < 20 {
		w = 20
	}
	return w
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
