package render

import (
	"fmt"
	"strings"

	"github.com/Brownie44l1/analyart/internal/ranking"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultBarWidth = 40
	labelWidth      = 14
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	labelStyle   = lipgloss.NewStyle().Width(labelWidth)
	fillStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	trackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Bar draws a horizontal bar of width cells, percent of them filled.
func Bar(percent, width int) string {
	if width <= 0 {
		width = defaultBarWidth
	}
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	return fillStyle.Render(strings.Repeat("█", filled)) +
		trackStyle.Render(strings.Repeat("░", width-filled))
}

// Terminal renders the status line and, for recognized results, one bar per
// class.
func Terminal(res ranking.Result, barWidth int) string {
	var b strings.Builder
	if !res.Recognized {
		b.WriteString(failStyle.Render(res.Status))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(successStyle.Render(res.Status))
	b.WriteString("\n\n")
	for _, e := range res.Visible() {
		fmt.Fprintf(&b, "%s %s %3d%%\n", labelStyle.Render(e.Label), Bar(e.Percent, barWidth), e.Percent)
	}
	return b.String()
}
