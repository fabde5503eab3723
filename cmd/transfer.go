package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/ui"
	"github.com/urfave/cli/v3"
)

// TransferCopy copies one item between lists as --user.
func (r *Runner) TransferCopy(ctx context.Context, cmd *cli.Command) error {
	return r.transferOne(ctx, cmd, models.OperationCopy)
}

// TransferMove moves one item between lists as --user.
func (r *Runner) TransferMove(ctx context.Context, cmd *cli.Command) error {
	return r.transferOne(ctx, cmd, models.OperationMove)
}

func (r *Runner) transferOne(ctx context.Context, cmd *cli.Command, op models.Operation) error {
	item, err := parseItemRef(cmd.StringArg("item"))
	if err != nil {
		return err
	}
	source, target, err := listFlags(cmd)
	if err != nil {
		return err
	}

	req := models.TransferRequest{
		SourceList:       source,
		TargetList:       target,
		Item:             item,
		Operation:        op,
		PreserveMetadata: cmd.Bool("preserve-metadata"),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	engine, err := r.engine(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	r.logger.Debug("transfer", "op", op, "item", item, "from", source, "to", target)

	var result models.TransferResult
	if op == models.OperationMove {
		result, err = engine.Move(ctx, cmd.String("user"), req)
	} else {
		result, err = engine.Copy(ctx, cmd.String("user"), req)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.writePlain("%s\n", ui.TransferSummary(op, result))
}

// TransferBulk runs a batch from --item flags or a JSON request --file. Flags override fields of the file.
func (r *Runner) TransferBulk(ctx context.Context, cmd *cli.Command) error {
	var req models.BulkRequest
	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read bulk request: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("%w: malformed bulk request: %v", shared.ErrInvalidRequest, err)
		}
	}

	source, target, err := listFlags(cmd)
	if err != nil {
		return err
	}
	req.SourceList, req.TargetList = source, target

	if cmd.IsSet("op") || req.Operation == "" {
		op, err := models.ParseOperation(cmd.String("op"))
		if err != nil {
			return err
		}
		req.Operation = op
	}
	if cmd.IsSet("preserve-metadata") {
		req.PreserveMetadata = cmd.Bool("preserve-metadata")
	}
	for _, raw := range cmd.StringSlice("item") {
		item, err := parseItemRef(raw)
		if err != nil {
			return err
		}
		req.Items = append(req.Items, item)
	}

	if err := req.Validate(); err != nil {
		return err
	}

	engine, err := r.engine(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	result, err := engine.Bulk(ctx, cmd.String("user"), req)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.writePlain("%s\n", ui.BulkSummary(req.Operation, result))
}

func listFlags(cmd *cli.Command) (models.ListRef, models.ListRef, error) {
	source, err := models.ParseListRef(cmd.String("from"))
	if err != nil {
		return models.ListRef{}, models.ListRef{}, err
	}
	target, err := models.ParseListRef(cmd.String("to"))
	if err != nil {
		return models.ListRef{}, models.ListRef{}, err
	}
	return source, target, nil
}

// parseItemRef parses "type:id", for example "movie:12".
func parseItemRef(s string) (models.ItemRef, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return models.ItemRef{}, fmt.Errorf("%w: item %q must look like type:id", shared.ErrInvalidArgument, s)
	}

	t, err := models.ParseReferenceType(kind)
	if err != nil {
		return models.ItemRef{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return models.ItemRef{}, fmt.Errorf("%w: item id %q must be a positive integer", shared.ErrInvalidArgument, id)
	}
	return models.ItemRef{Type: t, ID: n}, nil
}
