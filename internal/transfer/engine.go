package transfer

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/metrics"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
)

// Engine is the entry point of the transfer engine.
//
// Each call runs in one transaction. With the database opened by [shared.NewDatabase] that transaction starts
// with BEGIN IMMEDIATE, so concurrent writers serialize; the live-item unique index catches anything left.
type Engine struct {
	db     *sql.DB
	logger *log.Logger
}

// NewEngine creates an [Engine]. A nil logger discards output.
func NewEngine(db *sql.DB, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{db: db, logger: logger.WithPrefix("transfer")}
}

// Copy copies one item between lists.
func (e *Engine) Copy(ctx context.Context, userID string, req models.TransferRequest) (models.TransferResult, error) {
	req.Operation = models.OperationCopy
	return e.single(ctx, userID, req)
}

// Move moves one item between lists. Metadata always travels with the item.
func (e *Engine) Move(ctx context.Context, userID string, req models.TransferRequest) (models.TransferResult, error) {
	req.Operation = models.OperationMove
	req.PreserveMetadata = true
	return e.single(ctx, userID, req)
}

// Bulk runs a batch. The whole batch is one transaction: any failure leaves every list untouched.
func (e *Engine) Bulk(ctx context.Context, userID string, req models.BulkRequest) (models.BulkResult, error) {
	return e.run(ctx, userID, "bulk_"+string(req.Operation), req)
}

func (e *Engine) single(ctx context.Context, userID string, req models.TransferRequest) (models.TransferResult, error) {
	if err := req.Validate(); err != nil {
		e.observe(string(req.Operation), err, models.BulkResult{}, 0)
		return models.TransferResult{}, err
	}

	result, err := e.run(ctx, userID, string(req.Operation), req.Bulk())
	if err != nil {
		return models.TransferResult{}, err
	}
	return result.Results[0], nil
}

func (e *Engine) run(ctx context.Context, userID, operation string, req models.BulkRequest) (models.BulkResult, error) {
	start := time.Now()

	var result models.BulkResult
	err := repositories.WithTx(ctx, e.db, func(s *repositories.Store) error {
		var err error
		result, err = NewOrchestrator(s).Run(ctx, userID, req)
		return err
	})
	elapsed := time.Since(start)
	e.observe(operation, err, result, elapsed)

	if err != nil {
		e.logger.Warn("transfer failed",
			"op", operation, "user", userID, "source", req.SourceList, "target", req.TargetList,
			"items", len(req.Items), "err", err)
		return models.BulkResult{}, err
	}

	e.logger.Info("transfer committed",
		"op", operation, "user", userID, "source", req.SourceList, "target", req.TargetList,
		"affected", result.ItemsAffected, "skipped", result.DuplicatesSkipped, "tombstoned", result.Tombstoned,
		"duration", elapsed)
	return result, nil
}

func (e *Engine) observe(operation string, err error, r models.BulkResult, elapsed time.Duration) {
	outcome := Outcome(err)
	if err == nil && r.ItemsAffected == 0 && r.DuplicatesSkipped > 0 {
		outcome = metrics.OutcomeDuplicate
	}
	metrics.ObserveTransfer(operation, outcome, r.ItemsAffected, r.DuplicatesSkipped, r.Tombstoned, elapsed)
}

// Outcome classifies err into one of the metrics outcome labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, shared.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, shared.ErrPermissionDenied):
		return metrics.OutcomeForbidden
	case errors.Is(err, shared.ErrInvalidRequest):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
