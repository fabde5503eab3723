package transfer

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
)

// Orchestrator validates a batch up front and then executes it item by item.
type Orchestrator struct {
	registry  *Registry
	validator *Validator
	resolver  *Resolver
	detector  *Detector
	executor  *Executor
}

// NewOrchestrator wires every component to the repositories of s.
func NewOrchestrator(s *repositories.Store) *Orchestrator {
	return &Orchestrator{
		registry:  NewRegistry(s.Lists, s.Permissions),
		validator: NewValidator(s.Permissions),
		resolver:  NewResolver(s.Content),
		detector:  NewDetector(s.Items, s.Content),
		executor:  NewExecutor(s.Items),
	}
}

// Run executes req for userID.
//
// Nothing is written until the request shape, both lists, the permissions and every named item have been
// resolved; a single bad item aborts the batch untouched. Permissions are checked once per list, never per row.
// Moves also need write access to the source, since they tombstone its rows, and cannot start from the personal
// list. Items run in request order against shared snapshots, so an item repeated within the batch, or covered by an
// earlier collection or series, counts as a duplicate.
func (o *Orchestrator) Run(ctx context.Context, userID string, req models.BulkRequest) (models.BulkResult, error) {
	var result models.BulkResult

	if err := req.Validate(); err != nil {
		return result, err
	}

	source, err := o.registry.Get(ctx, req.SourceList, userID)
	if err != nil {
		return result, fmt.Errorf("source list: %w", err)
	}
	target, err := o.registry.Target(ctx, req.TargetList, userID)
	if err != nil {
		return result, fmt.Errorf("target list: %w", err)
	}

	if err := o.validator.RequireWrite(ctx, target, userID); err != nil {
		return result, err
	}
	if req.Operation == models.OperationMove {
		if source.IsPersonal() {
			return result, fmt.Errorf("%w: items cannot be moved out of the personal list", shared.ErrInvalidRequest)
		}
		if err := o.validator.RequireWrite(ctx, source, userID); err != nil {
			return result, err
		}
	}

	expansion, err := o.resolver.Expand(ctx, source.UserID, req.Items)
	if err != nil {
		return result, err
	}

	sourceKeys, err := o.detector.Load(ctx, source)
	if err != nil {
		return result, err
	}
	targetKeys, err := o.detector.Load(ctx, target)
	if err != nil {
		return result, err
	}

	for _, item := range req.Items {
		plan := Plan{
			Operation:        req.Operation,
			Source:           source,
			Target:           target,
			Item:             item,
			Refs:             expansion[item],
			PreserveMetadata: req.PreserveMetadata,
		}

		r, err := o.executor.Execute(ctx, plan, sourceKeys, targetKeys)
		if err != nil {
			return result, err
		}
		result.Add(r)
	}

	result.Message = summarize(req, result)
	return result, nil
}

func summarize(req models.BulkRequest, r models.BulkResult) string {
	verb := "Copied"
	if req.Operation == models.OperationMove {
		verb = "Moved"
	}

	msg := fmt.Sprintf("%s %s from %s to list %s", verb, plural(r.ItemsAffected, "item"), req.SourceList, req.TargetList)
	if r.DuplicatesSkipped > 0 {
		msg += fmt.Sprintf(", %s skipped as already present", plural(r.DuplicatesSkipped, "duplicate"))
	}
	return msg
}
