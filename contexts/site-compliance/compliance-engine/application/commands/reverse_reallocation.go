package commands

import (
	"context"
	"log/slog"
	"strings"

	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
)

type ReverseReallocationCommand struct {
	ReallocationID string
	Reason         string
}

type ReverseReallocationUseCase struct {
	Reallocations ports.ReallocationLedger
	Locker        ports.Locker
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

// Execute withdraws a proposal or corrects a committed transfer. The record is
// kept; a committed transfer stops counting from the reversal instant.
func (u ReverseReallocationUseCase) Execute(ctx context.Context, cmd ReverseReallocationCommand) (entities.Reallocation, error) {
	logger := application.ResolveLogger(u.Logger)
	reallocationID := strings.TrimSpace(cmd.ReallocationID)
	const op = "reverse reallocation"
	if reallocationID == "" {
		return entities.Reallocation{}, domainerrors.Reject(domainerrors.ErrValidation, op, "reallocation id is required")
	}

	realloc, err := u.Reallocations.GetReallocation(ctx, reallocationID)
	if err != nil {
		return entities.Reallocation{}, err
	}
	release, err := u.Locker.Lock(ctx, LockKey(realloc.DonorID), LockKey(realloc.RecipientID))
	if err != nil {
		return entities.Reallocation{}, err
	}
	defer release()

	realloc, err = u.Reallocations.GetReallocation(ctx, reallocationID)
	if err != nil {
		return entities.Reallocation{}, err
	}
	if !realloc.CanTransition(entities.ReallocationReversed) {
		return entities.Reallocation{}, domainerrors.Reject(domainerrors.ErrConflict, op, "reallocation is already "+string(realloc.Status),
			domainerrors.Municipality(realloc.DonorID),
			domainerrors.Record(realloc.ReallocationID),
		)
	}

	now := nowFrom(u.Clock)
	from := realloc.Status
	reversedAt := now
	realloc.Status = entities.ReallocationReversed
	realloc.ReversedAt = &reversedAt
	realloc.ReversalReason = strings.TrimSpace(cmd.Reason)

	data := reallocationEventData(realloc)
	data["previous_status"] = string(from)
	data["reason"] = realloc.ReversalReason
	event, err := newOutboxEvent(ctx, u.IDGenerator, EventReallocationReversed, realloc.DonorID, now, data)
	if err != nil {
		return entities.Reallocation{}, err
	}
	if err := u.Reallocations.TransitionReallocation(ctx, ports.ReallocationTransition{
		ReallocationID: realloc.ReallocationID,
		From:           from,
		To:             entities.ReallocationReversed,
		At:             now,
		Reason:         realloc.ReversalReason,
	}, event); err != nil {
		logger.Error("reverse reallocation write failed",
			"event", "compliance_reallocation_reverse_failed",
			"module", application.LogModule,
			"layer", "application",
			"reallocation_id", realloc.ReallocationID,
			"error", err.Error(),
		)
		return entities.Reallocation{}, err
	}

	logger.Info("reallocation reversed",
		"event", "compliance_reallocation_reversed",
		"module", application.LogModule,
		"layer", "application",
		"reallocation_id", realloc.ReallocationID,
		"previous_status", from,
		"donor_id", realloc.DonorID,
		"recipient_id", realloc.RecipientID,
	)
	return realloc, nil
}
