package commands

import (
	"context"
	"log/slog"
	"strings"

	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/services"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
)

type CommitReallocationResult struct {
	Reallocation entities.Reallocation
	Donor        entities.ComplianceResult
	Recipient    entities.ComplianceResult
}

type CommitReallocationUseCase struct {
	State         application.StateReader
	Reallocations ports.ReallocationLedger
	Locker        ports.Locker
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

// Execute re-validates the proposal against current state inside the donor and
// recipient lock scope: donor excess, the justification, then recipient
// shortfall and adjusted requirement. It never retries; a stale proposal must be re-proposed.
func (u CommitReallocationUseCase) Execute(ctx context.Context, reallocationID string) (CommitReallocationResult, error) {
	logger := application.ResolveLogger(u.Logger)
	reallocationID = strings.TrimSpace(reallocationID)
	const op = "commit reallocation"
	if reallocationID == "" {
		return CommitReallocationResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "reallocation id is required")
	}

	realloc, err := u.Reallocations.GetReallocation(ctx, reallocationID)
	if err != nil {
		return CommitReallocationResult{}, err
	}
	if err := requireProposed(op, realloc); err != nil {
		return CommitReallocationResult{}, err
	}

	release, err := u.Locker.Lock(ctx, LockKey(realloc.DonorID), LockKey(realloc.RecipientID))
	if err != nil {
		return CommitReallocationResult{}, err
	}
	defer release()

	realloc, err = u.Reallocations.GetReallocation(ctx, reallocationID)
	if err != nil {
		return CommitReallocationResult{}, err
	}
	if err := requireProposed(op, realloc); err != nil {
		return CommitReallocationResult{}, err
	}

	now := nowFrom(u.Clock)
	donorIn, err := u.State.LoadInput(ctx, realloc.DonorID, now)
	if err != nil {
		return CommitReallocationResult{}, err
	}
	donor := services.Evaluate(donorIn)
	if realloc.Quantity > donor.Excess {
		logger.Warn("reallocation commit stale: donor excess shrank",
			"event", "compliance_reallocation_commit_stale",
			"module", application.LogModule,
			"layer", "application",
			"reallocation_id", realloc.ReallocationID,
			"donor_id", realloc.DonorID,
			"quantity", realloc.Quantity,
			"donor_excess", donor.Excess,
		)
		return CommitReallocationResult{}, domainerrors.Reject(domainerrors.ErrStaleState, op,
			"donor excess no longer covers the proposal; re-propose with fresh data",
			domainerrors.Municipality(realloc.DonorID),
			domainerrors.Record(realloc.ReallocationID),
			domainerrors.Requested(realloc.Quantity),
			domainerrors.Available(donor.Excess),
		)
	}
	if siteID, ok := services.JustificationStillHolds(realloc, donorIn.Sites, donorIn.Reallocations, now); !ok {
		logger.Warn("reallocation commit stale: justification changed",
			"event", "compliance_reallocation_commit_stale",
			"module", application.LogModule,
			"layer", "application",
			"reallocation_id", realloc.ReallocationID,
			"donor_id", realloc.DonorID,
			"site_id", siteID,
		)
		return CommitReallocationResult{}, domainerrors.Reject(domainerrors.ErrStaleState, op,
			"justifying site "+siteID+" is no longer eligible or is cited elsewhere",
			domainerrors.Municipality(realloc.DonorID),
			domainerrors.Record(realloc.ReallocationID),
			domainerrors.Requested(realloc.Quantity),
		)
	}

	recipientIn, err := u.State.LoadInput(ctx, realloc.RecipientID, now)
	if err != nil {
		return CommitReallocationResult{}, err
	}
	recipient := services.Evaluate(recipientIn)
	if recipient.Shortfall == 0 || realloc.Quantity > recipient.AdjustedRequirement {
		logger.Warn("reallocation commit stale: recipient capacity changed",
			"event", "compliance_reallocation_commit_stale",
			"module", application.LogModule,
			"layer", "application",
			"reallocation_id", realloc.ReallocationID,
			"recipient_id", realloc.RecipientID,
			"quantity", realloc.Quantity,
			"recipient_shortfall", recipient.Shortfall,
			"recipient_adjusted_requirement", recipient.AdjustedRequirement,
		)
		available := recipient.AdjustedRequirement
		if recipient.Shortfall == 0 {
			available = 0
		}
		return CommitReallocationResult{}, domainerrors.Reject(domainerrors.ErrStaleState, op,
			"recipient can no longer absorb the proposal; re-propose with fresh data",
			domainerrors.Municipality(realloc.RecipientID),
			domainerrors.Record(realloc.ReallocationID),
			domainerrors.Requested(realloc.Quantity),
			domainerrors.Available(available),
		)
	}

	realloc.Status = entities.ReallocationCommitted
	committedAt := now
	realloc.CommittedAt = &committedAt
	event, err := newOutboxEvent(ctx, u.IDGenerator, EventReallocationCommitted, realloc.DonorID, now, reallocationEventData(realloc))
	if err != nil {
		return CommitReallocationResult{}, err
	}
	if err := u.Reallocations.TransitionReallocation(ctx, ports.ReallocationTransition{
		ReallocationID: realloc.ReallocationID,
		From:           entities.ReallocationProposed,
		To:             entities.ReallocationCommitted,
		At:             now,
	}, event); err != nil {
		logger.Error("commit reallocation write failed",
			"event", "compliance_reallocation_commit_failed",
			"module", application.LogModule,
			"layer", "application",
			"reallocation_id", realloc.ReallocationID,
			"error", err.Error(),
		)
		return CommitReallocationResult{}, err
	}

	donorAfter, err := u.State.Evaluate(ctx, realloc.DonorID, now)
	if err != nil {
		return CommitReallocationResult{}, err
	}
	recipientAfter, err := u.State.Evaluate(ctx, realloc.RecipientID, now)
	if err != nil {
		return CommitReallocationResult{}, err
	}

	logger.Info("reallocation committed",
		"event", "compliance_reallocation_committed",
		"module", application.LogModule,
		"layer", "application",
		"reallocation_id", realloc.ReallocationID,
		"donor_id", realloc.DonorID,
		"recipient_id", realloc.RecipientID,
		"quantity", realloc.Quantity,
		"donor_excess_after", donorAfter.Excess,
		"recipient_shortfall_after", recipientAfter.Shortfall,
	)
	return CommitReallocationResult{Reallocation: realloc, Donor: donorAfter, Recipient: recipientAfter}, nil
}

func requireProposed(op string, realloc entities.Reallocation) error {
	if realloc.Status == entities.ReallocationProposed {
		return nil
	}
	return domainerrors.Reject(domainerrors.ErrConflict, op, "reallocation is "+string(realloc.Status),
		domainerrors.Municipality(realloc.DonorID),
		domainerrors.Record(realloc.ReallocationID),
	)
}
