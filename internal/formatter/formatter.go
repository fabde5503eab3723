// package formatter provides functions to export list data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat parses a --format value. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Render converts export to f.
func Render(export *models.ListExport, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToCSV converts a ListExport to CSV format with columns: Type, ID, Title, Year, Watched, Notes, Added
func ExportToCSV(export *models.ListExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Type", "ID", "Title", "Year", "Watched", "Notes", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range export.Items {
		record := []string{
			item.ItemType.String(),
			strconv.FormatInt(item.ItemID, 10),
			item.Title,
			yearString(item.Year),
			strconv.FormatBool(item.Watched),
			item.Notes,
			dateString(item.AddedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a ListExport to Markdown with a checkbox per item
func ExportToMarkdown(export *models.ListExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.List.Name)

	if export.List.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.List.Description)
	}

	fmt.Fprintf(&buf, "**Items**: %d\n", len(export.Items))
	fmt.Fprintf(&buf, "**Watched**: %d\n\n", export.WatchedCount())

	buf.WriteString("## Items\n\n")
	for _, item := range export.Items {
		check := " "
		if item.Watched {
			check = "x"
		}
		fmt.Fprintf(&buf, "- [%s] %s (%s)", check, displayTitle(item), item.ItemType)
		if item.Notes != "" {
			fmt.Fprintf(&buf, ": %s", item.Notes)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a ListExport to plain text format
func ExportToText(export *models.ListExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "List: %s\n", export.List.Name)
	if export.List.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.List.Description)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(export.Items))

	for i, item := range export.Items {
		fmt.Fprintf(&buf, "%d. [%s] %s\n", i+1, item.ItemType, displayTitle(item))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a ListExport to indented JSON including items
func ExportToJSON(export *models.ListExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// ToMetadataJSON generates a JSON representation of list metadata (without items)
func ToMetadataJSON(list *models.List) ([]byte, error) {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal list metadata: %w", err)
	}
	return data, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a list to CSV format with accompanying metadata JSON file.
//
// Defaults to the list's base name as the base filename & creates {base}_items.csv and {base}_metadata.json
func WriteCSVExport(export *models.ListExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = BaseName(export.List)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.List)
	if err != nil {
		return nil, err
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{ItemsFile: itemsFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport exports a list to {dir}/README.md, creating dir when needed.
//
// Directory name defaults to the list's base name.
func WriteMarkdownExport(export *models.ListExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = BaseName(export.List)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a list to plain text format.
//
// Defaults to {base}_items.txt as the filename.
func WriteTextExport(export *models.ListExport, path string) (string, error) {
	if path == "" {
		path = BaseName(export.List) + "_items.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports a list to {base}.json.
func WriteJSONExport(export *models.ListExport, path string) (string, error) {
	if path == "" {
		path = BaseName(export.List) + ".json"
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// BaseName returns the default export file stem for list: "personal" or "list_{id}".
func BaseName(list *models.List) string {
	if list.IsPersonal() {
		return "personal"
	}
	return fmt.Sprintf("list_%d", list.ID)
}

func displayTitle(item *models.ExportItem) string {
	title := item.Title
	if title == "" {
		title = fmt.Sprintf("#%d", item.ItemID)
	}
	if item.Year > 0 {
		title = fmt.Sprintf("%s (%d)", title, item.Year)
	}
	return title
}

func yearString(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
