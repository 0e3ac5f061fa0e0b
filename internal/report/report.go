package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/okalkan/diziquiz/internal/model"
)

const terminalWidthBackup = 80

var rankMarkers = map[int]string{1: "👑", 2: "🥈", 3: "🥉"}

// RenderSummary prints aggregate numbers for the stored history.
func RenderSummary(w io.Writer, stats model.Stats) error {
	if stats.TotalAttempts == 0 {
		_, err := fmt.Fprintln(w, "No attempts yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Attempts: %d\n", stats.TotalAttempts); err != nil {
		return err
	}
	if stats.BestScore != nil {
		if _, err := fmt.Fprintf(w, "Best: %d/%d (%d%%)\n", stats.BestScore.Score, stats.BestScore.TotalQuestions, stats.BestScore.Percentage); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Average: %d%%\n", stats.AveragePercentage); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderHistory prints the attempt table, newest first.
func RenderHistory(w io.Writer, attempts []model.Attempt) error {
	return renderHistoryAt(w, attempts, time.Now(), lineWidth(w))
}

func renderHistoryAt(w io.Writer, attempts []model.Attempt, now time.Time, width int) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts yet.")
		return err
	}
	cols := []column{
		{title: "#", rightAlign: true},
		{title: "Date"},
		{title: "Score", rightAlign: true},
		{title: "Percent", rightAlign: true},
		{title: "Duration", rightAlign: true},
	}
	rows := make([][]string, 0, len(attempts))
	for i, a := range attempts {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			FormatRelativeDate(a.Date, now),
			fmt.Sprintf("%d/%d", a.Score, a.TotalQuestions),
			fmt.Sprintf("%d%%", a.Percentage),
			formatDuration(a.DurationSeconds),
		})
	}
	for _, line := range renderTable(cols, rows) {
		if _, err := fmt.Fprintln(w, truncateLine(line, width)); err != nil {
			return err
		}
	}
	return nil
}

// RenderLeaderboard prints the per-user ranking table.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry) error {
	return renderLeaderboardAt(w, entries, lineWidth(w))
}

func renderLeaderboardAt(w io.Writer, entries []model.LeaderboardEntry, width int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No players yet.")
		return err
	}
	cols := []column{
		{title: "Rank"},
		{title: "Player"},
		{title: "Best", rightAlign: true},
		{title: "Average", rightAlign: true},
		{title: "Quizzes", rightAlign: true},
		{title: "Last Played"},
	}
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		rank := fmt.Sprintf("%d", i+1)
		if marker, ok := rankMarkers[i+1]; ok {
			rank = marker
		}
		rows = append(rows, []string{
			rank,
			entry.Username,
			fmt.Sprintf("%d", entry.BestScore),
			fmt.Sprintf("%.1f%%", entry.AverageScore),
			fmt.Sprintf("%d", entry.TotalQuizzes),
			entry.LastPlayDate.Format("02.01.2006"),
		})
	}
	for _, line := range renderTable(cols, rows) {
		if _, err := fmt.Fprintln(w, truncateLine(line, width)); err != nil {
			return err
		}
	}
	return nil
}

// FormatRelativeDate renders dates the way the result screens label them:
// same day, previous day, up to a week as day counts, older as plain dates.
func FormatRelativeDate(date, now time.Time) string {
	d := daysBetween(date, now)
	switch {
	case d <= 0:
		return "Bugün"
	case d == 1:
		return "Dün"
	case d <= 6:
		return fmt.Sprintf("%d gün önce", d)
	default:
		return date.Format("02.01.2006")
	}
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	return int(toDay.Sub(fromDay) / (24 * time.Hour))
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}

// lineWidth returns the terminal width when writing to a tty, otherwise 0
// (no truncation) so piped output stays intact.
func lineWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return 0
	}
	if !term.IsTerminal(int(file.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
