package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConversionRow represents one settled conversion in the feed.
type ConversionRow struct {
	Timestamp string
	User      string
	AmountIn  string
	AmountOut string
	Price     string
}

// ConversionsComponent renders the recent conversions feed, newest first.
type ConversionsComponent struct {
	rows    []ConversionRow
	maxRows int
}

// NewConversionsComponent creates a new conversions component.
func NewConversionsComponent(maxRows int) *ConversionsComponent {
	return &ConversionsComponent{
		rows:    make([]ConversionRow, 0),
		maxRows: maxRows,
	}
}

// Add prepends a conversion to the feed.
func (c *ConversionsComponent) Add(row ConversionRow) {
	c.rows = append([]ConversionRow{row}, c.rows...)
	if len(c.rows) > c.maxRows {
		c.rows = c.rows[:c.maxRows]
	}
}

// Clear clears the feed.
func (c *ConversionsComponent) Clear() {
	c.rows = make([]ConversionRow, 0)
}

// Count returns the number of conversions currently held.
func (c *ConversionsComponent) Count() int {
	return len(c.rows)
}

// View renders the conversions component.
func (c *ConversionsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	creditStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("CONVERSIONS"))
	sb.WriteString("\n\n")

	if len(c.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No conversions settled yet..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-9s  %-12s  %12s  %14s  %10s\n",
		"Time", "User", "In", "Out", "Price"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 64)) + "\n")

	for _, row := range c.rows {
		sb.WriteString(fmt.Sprintf("  %-9s  %-12s  %12s  %s  %10s\n",
			row.Timestamp,
			row.User,
			row.AmountIn,
			creditStyle.Render(fmt.Sprintf("%14s", row.AmountOut)),
			row.Price,
		))
	}

	return sb.String()
}
