// Package ui renders styled terminal summaries for the CLI with lipgloss.
//
// [Palette] holds the named styles. [TransferSummary] and [BulkSummary] describe transfer outcomes, and
// [ListTable] prints the lists visible to a user. Output degrades to plain text when stdout is not a terminal.
package ui
