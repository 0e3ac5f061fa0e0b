// Package report renders attempt history, stats, and the leaderboard.
package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column: the header text and how the cells
// beneath it are aligned.
type column struct {
	title      string
	rightAlign bool
}

// renderTable lays rows out under the given columns, padding every cell
// to the widest value in its column. Widths are display widths so wide
// runes stay aligned.
func renderTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := columnWidths(cols, rows)

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(cols, header, widths))
	for _, row := range rows {
		lines = append(lines, renderRow(cols, row, widths))
	}
	return lines
}

func columnWidths(cols []column, rows [][]string) []int {
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.title)
	}
	for _, row := range rows {
		for i := 0; i < len(cols) && i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func renderRow(cols []column, row []string, widths []int) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if col.rightAlign {
			cells[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}

func truncateLine(line string, width int) string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}
