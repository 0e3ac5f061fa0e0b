// Package boardui provides the Bubble Tea stats browser.
package boardui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okalkan/diziquiz/internal/history"
	"github.com/okalkan/diziquiz/internal/model"
	"github.com/okalkan/diziquiz/internal/report"
)

const (
	tabOverview = iota
	tabHistory
	tabLeaderboard
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	footStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats browser.
type Model struct {
	attempts *history.Store

	tabs      []string
	activeTab int
	viewports []viewport.Model
	board     table.Model
	errMsg    string

	width  int
	height int
}

// NewModel constructs a stats browser over the attempt store.
func NewModel(attempts *history.Store) *Model {
	m := &Model{
		attempts: attempts,
		tabs:     []string{"Özet", "Geçmiş", "Sıralama"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.board = buildBoardTable(nil, 0, 1)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabLeaderboard {
				m.board.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabLeaderboard {
				m.board.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabLeaderboard {
				var cmd tea.Cmd
				m.board, cmd = m.board.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderTabs()
	var body string
	if m.activeTab == tabLeaderboard {
		body = m.board.View()
	} else {
		body = m.viewports[m.activeTab].View()
	}
	footer := footStyle.Render("←/→ sekme · g/G baş/son · q çıkış")
	if m.errMsg != "" {
		footer = errStyle.Render(m.errMsg) + "\n" + footer
	}
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabLeaderboard {
		m.board.Focus()
	} else {
		m.board.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *Model) refresh() {
	ctx := context.Background()
	m.errMsg = ""

	stats, err := m.attempts.Stats(ctx)
	if err != nil {
		m.errMsg = fmt.Sprintf("istatistikler yüklenemedi: %v", err)
		stats = model.Stats{}
	}
	attempts, err := m.attempts.History(ctx)
	if err != nil {
		m.errMsg = fmt.Sprintf("geçmiş yüklenemedi: %v", err)
		attempts = nil
	}
	entries, err := m.attempts.Leaderboard(ctx)
	if err != nil {
		m.errMsg = fmt.Sprintf("sıralama yüklenemedi: %v", err)
		entries = nil
	}

	m.viewports[tabOverview].SetContent(renderOverview(stats))
	m.viewports[tabHistory].SetContent(renderHistory(attempts))
	m.board = buildBoardTable(entries, m.board.Width(), m.board.Height())
}

func renderOverview(stats model.Stats) string {
	var buf bytes.Buffer
	if err := report.RenderSummary(&buf, stats); err != nil {
		return err.Error()
	}
	if len(stats.RecentAttempts) > 0 {
		buf.WriteString("Son Denemeler\n")
		if err := report.RenderHistory(&buf, stats.RecentAttempts); err != nil {
			return err.Error()
		}
	}
	return buf.String()
}

func renderHistory(attempts []model.Attempt) string {
	var buf bytes.Buffer
	if err := report.RenderHistory(&buf, attempts); err != nil {
		return err.Error()
	}
	return buf.String()
}

func buildBoardTable(entries []model.LeaderboardEntry, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Sıra", Width: 5},
		{Title: "Oyuncu", Width: 20},
		{Title: "En İyi", Width: 7},
		{Title: "Ortalama", Width: 9},
		{Title: "Oyun", Width: 5},
		{Title: "Son Oyun", Width: 11},
	}
	rows := make([]table.Row, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			entry.Username,
			fmt.Sprintf("%d", entry.BestScore),
			fmt.Sprintf("%.1f%%", entry.AverageScore),
			fmt.Sprintf("%d", entry.TotalQuizzes),
			entry.LastPlayDate.Format("02.01.2006"),
		})
	}
	opts := []table.Option{
		table.WithColumns(columns),
		table.WithRows(rows),
	}
	if height > 0 {
		opts = append(opts, table.WithHeight(height))
	}
	if width > 0 {
		opts = append(opts, table.WithWidth(width))
	}
	t := table.New(opts...)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	t.SetStyles(styles)
	return t
}

func (m *Model) updateLayout() {
	headerHeight := lipgloss.Height(m.renderTabs())
	footerHeight := 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight := m.height - headerHeight - footerHeight - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.board.SetWidth(m.width)
	m.board.SetHeight(bodyHeight)
}
