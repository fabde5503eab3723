package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/desertthunder/marquee/internal/ui"
	"github.com/urfave/cli/v3"
)

// ListsShow prints the lists visible to --user, or the items of the list given as argument.
func (r *Runner) ListsShow(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")
	svc, err := r.lists(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	arg := cmd.StringArg("list")
	if arg == "" {
		all, err := svc.Visible(ctx, userID)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(all, cmd.Bool("pretty"))
		}
		return r.writePlain("%s\n", ui.ListTable(all, userID))
	}

	ref, err := models.ParseListRef(arg)
	if err != nil {
		return err
	}
	export, err := svc.Export(ctx, userID, ref)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(export)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

// ListsCreate creates a custom list owned by --user.
func (r *Runner) ListsCreate(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: list name", shared.ErrMissingArgument)
	}

	svc, err := r.lists(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	list, err := svc.Create(ctx, cmd.String("user"), name, cmd.String("description"))
	if err != nil {
		return err
	}

	r.logger.Debug("list created", "id", list.ID, "user", list.UserID)
	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ created list %d %q\n", list.ID, list.Name)
}

// ListsExport writes a list in the --format requested. With --all every visible list is written under --dir.
func (r *Runner) ListsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		return r.exportAll(ctx, cmd, format)
	}

	arg := cmd.StringArg("list")
	if arg == "" {
		return fmt.Errorf("%w: list id or \"personal\"", shared.ErrMissingArgument)
	}
	ref, err := models.ParseListRef(arg)
	if err != nil {
		return err
	}

	svc, err := r.lists(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	export, err := svc.Export(ctx, cmd.String("user"), ref)
	if err != nil {
		return err
	}

	if cmd.Bool("stdout") {
		data, err := formatter.Render(export, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	output := cmd.String("output")
	switch format {
	case formatter.FormatCSV:
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ exported %d item(s)\n", len(export.Items))
		r.writePlain("Items: %s\nMetadata: %s\n", result.ItemsFile, result.MetadataFile)
	case formatter.FormatMarkdown:
		path, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ exported %d item(s) to %s\n", len(export.Items), path)
	case formatter.FormatJSON:
		path, err := formatter.WriteJSONExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ exported %d item(s) to %s\n", len(export.Items), path)
	default:
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ exported %d item(s) to %s\n", len(export.Items), path)
	}
	return nil
}

// exportAll runs a bulk export of every list visible to --user and prints progress as it goes.
func (r *Runner) exportAll(ctx context.Context, cmd *cli.Command, format formatter.Format) error {
	svc, err := r.lists(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	exporter := tasks.NewExporter(svc, r.logger)
	opts := tasks.BulkExportOpts{
		Format:          format,
		OutputDir:       cmd.String("dir"),
		NumWorkers:      int(cmd.Int("workers")),
		RateLimit:       cmd.Float("rate"),
		IncludePersonal: cmd.Bool("personal"),
	}

	prog := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			r.writePlain("%s\n", u.Message)
		}
	}()

	result, err := exporter.BulkExport(ctx, prog, cmd.String("user"), opts)
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ exported %d/%d list(s) to %s\n", result.SuccessfulExports, result.TotalLists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("✗ %d list(s) failed, see %s\n", result.FailedExports, result.ManifestPath)
	}
	return nil
}
