package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/marquee/internal/models"
)

var cell = lipgloss.NewStyle().PaddingRight(2)

// TransferSummary describes the outcome of a single copy or move.
func TransferSummary(op models.Operation, r models.TransferResult) string {
	var b strings.Builder

	switch {
	case r.Duplicate:
		b.WriteString(styles.Warning(fmt.Sprintf("! %s %s: already in target list", op, r.Item)))
	default:
		b.WriteString(styles.OK(fmt.Sprintf("✓ %s %s", op, r.Item)))
	}
	b.WriteString("\n")
	b.WriteString(counts(r.ItemsAffected, r.DuplicatesSkipped, r.Tombstoned, op))

	if r.Message != "" {
		b.WriteString("\n")
		b.WriteString(styles.Help(r.Message))
	}
	return b.String()
}

// BulkSummary describes a batch: totals first, then one line per logical item.
func BulkSummary(op models.Operation, r models.BulkResult) string {
	var b strings.Builder

	b.WriteString(styles.Title(fmt.Sprintf("Bulk %s: %d item(s)", op, len(r.Results))))
	b.WriteString("\n")
	b.WriteString(counts(r.ItemsAffected, r.DuplicatesSkipped, r.Tombstoned, op))
	b.WriteString("\n")

	for _, item := range r.Results {
		mark := styles.OK("✓")
		if item.Duplicate {
			mark = styles.Warning("!")
		}
		fmt.Fprintf(&b, "\n  %s %s  +%d", mark, item.Item, item.ItemsAffected)
		if item.DuplicatesSkipped > 0 {
			fmt.Fprintf(&b, " (%d duplicate)", item.DuplicatesSkipped)
		}
	}
	if r.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Help(r.Message))
	}
	return b.String()
}

func counts(affected, skipped, tombstoned int, op models.Operation) string {
	line := fmt.Sprintf("added: %d  skipped: %d", affected, skipped)
	if op == models.OperationMove {
		line += fmt.Sprintf("  removed from source: %d", tombstoned)
	}
	return line
}

// ListTable renders lists as aligned columns, marking lists userID does not own as shared.
func ListTable(lists []*models.List, userID string) string {
	if len(lists) == 0 {
		return styles.Help("no lists")
	}

	rows := [][]string{{"ID", "NAME", "OWNER", ""}}
	for _, l := range lists {
		id := l.Ref().String()
		access := ""
		if !l.OwnedBy(userID) {
			access = "shared"
		}
		rows = append(rows, []string{id, l.Name, l.UserID, access})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, col := range row {
			widths[i] = max(widths[i], lipgloss.Width(col))
		}
	}

	lines := make([]string, 0, len(rows))
	for n, row := range rows {
		cols := make([]string, len(row))
		for i, col := range row {
			cols[i] = cell.Width(widths[i] + 2).Render(col)
		}
		line := strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cols...), " ")
		if n == 0 {
			line = styles.Help(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// ErrorLine renders err for stderr.
func ErrorLine(err error) string {
	return styles.Error("✗ " + err.Error())
}
