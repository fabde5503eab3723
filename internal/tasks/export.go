package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 20.0
	manifestName     = "export_manifest.json"
)

// ExportSource loads lists for export. [lists.Service] satisfies it.
type ExportSource interface {
	Visible(ctx context.Context, userID string) ([]*models.List, error)
	Export(ctx context.Context, userID string, ref models.ListRef) (*models.ListExport, error)
}

// BulkExportOpts contains configuration for bulk list exports.
type BulkExportOpts struct {
	Format          formatter.Format // Export format: csv, markdown, text, json
	OutputDir       string           // Base output directory (default: marquee_export_{epoch})
	NumWorkers      int              // Concurrent file writers (default: 5, max: 10)
	RateLimit       float64          // List loads per second (default: 20)
	IncludePersonal bool             // Also export the synthetic personal list
}

// ListExportResult is the outcome of one list in a bulk export.
type ListExportResult struct {
	ListID   string   `json:"list_id"`
	ListName string   `json:"list_name"`
	Success  bool     `json:"success"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`

	order int
}

// BulkExportResult summarises a bulk export. It is also the manifest written next to the exports.
type BulkExportResult struct {
	Format            formatter.Format   `json:"format"`
	ExportedAt        time.Time          `json:"exported_at"`
	TotalLists        int                `json:"total_lists"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"-"`
	Results           []ListExportResult `json:"results"`
}

type exportJob struct {
	order  int
	export *models.ListExport
}

// Exporter writes lists to disk.
type Exporter struct {
	src    ExportSource
	logger *log.Logger
}

// NewExporter creates an [Exporter]. A nil logger discards output.
func NewExporter(src ExportSource, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{src: src, logger: logger.WithPrefix("export")}
}

// BulkExport exports every list visible to userID with a bounded worker pool.
//
// A list that fails to load or write is recorded in the result and the rest continue. Cancelling ctx stops
// scheduling new lists; the partial result is returned with the context error.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	userID string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user", shared.ErrMissingArgument)
	}

	lists, err := e.src.Visible(ctx, userID)
	if err != nil {
		return nil, err
	}
	if opts.IncludePersonal {
		lists = append([]*models.List{models.NewPersonalList(userID)}, lists...)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("marquee_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		TotalLists:      len(lists),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ListExportResult, 0, len(lists)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(lists))
	results := make(chan ListExportResult, len(lists))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, fetchingListsUpdate(len(lists)))
		for i, list := range lists {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.src.Export(ctx, userID, list.Ref())
			if err != nil {
				e.logger.Warn("failed to load list", "list", list.Ref(), "error", err)
				results <- ListExportResult{
					ListID:   list.Ref().String(),
					ListName: list.Name,
					Error:    fmt.Sprintf("failed to load list: %v", err),
					order:    i,
				}
				continue
			}

			jobs <- exportJob{order: i, export: export}
			e.sendProgress(prog, exportingListUpdate(i+1, len(lists), list.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(lists), res.ListName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(lists), res.ListName, fmt.Errorf("%s", res.Error)))
		}
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].order < result.Results[j].order })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("bulk export finished", "user", userID, "lists", result.TotalLists,
		"ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

// exportWorker writes the exports it receives until jobs is closed.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- ListExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- writeOne(job, opts)
	}
}

// writeOne renders a single list in the requested format under opts.OutputDir.
func writeOne(j exportJob, opts BulkExportOpts) ListExportResult {
	list := j.export.List
	result := ListExportResult{
		ListID:   list.Ref().String(),
		ListName: list.Name,
		order:    j.order,
	}
	base := filepath.Join(opts.OutputDir, formatter.BaseName(list))

	switch opts.Format {
	case formatter.FormatCSV:
		res, err := formatter.WriteCSVExport(j.export, base)
		if err != nil {
			result.Error = fmt.Sprintf("CSV export failed: %v", err)
			return result
		}
		result.Files = []string{res.ItemsFile, res.MetadataFile}
	case formatter.FormatMarkdown:
		path, err := formatter.WriteMarkdownExport(j.export, base)
		if err != nil {
			result.Error = fmt.Sprintf("markdown export failed: %v", err)
			return result
		}
		result.Files = []string{path}
	case formatter.FormatText:
		path, err := formatter.WriteTextExport(j.export, base+"_items.txt")
		if err != nil {
			result.Error = fmt.Sprintf("text export failed: %v", err)
			return result
		}
		result.Files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(j.export, base+".json")
		if err != nil {
			result.Error = fmt.Sprintf("JSON export failed: %v", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// sendProgress never blocks; updates are dropped when nobody is reading.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
