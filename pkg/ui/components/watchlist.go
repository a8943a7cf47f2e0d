// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WatchlistRow represents one watched account in the table. All values are
// pre-formatted strings; the UI does not touch raw amounts.
type WatchlistRow struct {
	User      string
	Balance   string
	Pending   string
	Converted string
	Target    string
	Eligible  bool
}

// WatchlistComponent renders the watched accounts table.
type WatchlistComponent struct {
	rows []WatchlistRow
}

// NewWatchlistComponent creates a new watchlist component.
func NewWatchlistComponent() *WatchlistComponent {
	return &WatchlistComponent{
		rows: make([]WatchlistRow, 0),
	}
}

// Update replaces the watchlist rows.
func (w *WatchlistComponent) Update(rows []WatchlistRow) {
	w.rows = rows
}

// Len returns the number of watched accounts.
func (w *WatchlistComponent) Len() int {
	return len(w.rows)
}

// View renders the watchlist component.
func (w *WatchlistComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	eligibleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("WATCHLIST (%d users)", len(w.rows))))
	sb.WriteString("\n\n")

	if len(w.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No users watched yet..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-12s  %12s  %12s  %12s  %12s\n",
		"User", "Balance", "Pending", "Converted", "Target"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 68)) + "\n")

	for _, row := range w.rows {
		line := fmt.Sprintf("  %-12s  %12s  %12s  %12s  %12s",
			row.User, row.Balance, row.Pending, row.Converted, row.Target)
		if row.Eligible {
			sb.WriteString(eligibleStyle.Render(line + "  ▲"))
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
