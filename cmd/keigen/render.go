package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	shapeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90")).
			Align(lipgloss.Right)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// renderer prints demo steps, styled when writing to a terminal.
type renderer struct {
	w      io.Writer
	styled bool
}

func newRenderer(w io.Writer, styled bool) *renderer {
	return &renderer{w: w, styled: styled}
}

func (r *renderer) render(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// step prints a titled matrix given its shape and row-major values.
func (r *renderer) step(title string, rows, cols int, values []float64) {
	cells := make([]string, len(values))
	width := 0
	for i, v := range values {
		cells[i] = strconv.FormatFloat(v, 'g', 6, 64)
		width = max(width, len(cells[i]))
	}

	lines := make([]string, rows)
	for row := range rows {
		parts := make([]string, cols)
		for col := range cols {
			cell := fmt.Sprintf("%*s", width, cells[row*cols+col])
			parts[col] = r.render(cellStyle, cell)
		}
		lines[row] = strings.Join(parts, "  ")
	}
	body := strings.Join(lines, "\n")
	if r.styled {
		body = boxStyle.Render(body)
	}

	fmt.Fprintf(r.w, "%s %s\n%s\n\n",
		r.render(titleStyle, title),
		r.render(shapeStyle, fmt.Sprintf("[%d, %d]", rows, cols)),
		body)
}

func (r *renderer) value(title string, v float64) {
	fmt.Fprintf(r.w, "%s %s\n\n", r.render(titleStyle, title), strconv.FormatFloat(v, 'g', 6, 64))
}

func (r *renderer) failure(title string, err error) {
	fmt.Fprintf(r.w, "%s %s\n\n", r.render(titleStyle, title), r.render(errorStyle, err.Error()))
}

func (r *renderer) stats(engine string, live int, allocs, frees, peak uint64) {
	fmt.Fprintln(r.w, r.render(statsStyle,
		fmt.Sprintf("%s: live=%d allocs=%d frees=%d peak=%dB", engine, live, allocs, frees, peak)))
}
