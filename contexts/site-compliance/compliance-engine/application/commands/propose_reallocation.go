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

type ProposeReallocationCommand struct {
	DonorID     string
	RecipientID string
	Quantity    int
	Reason      string
}

type ProposeReallocationResult struct {
	Reallocation entities.Reallocation
	Donor        entities.ComplianceResult
	Recipient    entities.ComplianceResult
}

type ProposeReallocationUseCase struct {
	State         application.StateReader
	Adjacency     ports.AdjacencyGraph
	Reallocations ports.ReallocationLedger
	Locker        ports.Locker
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

// Execute validates a transfer in this order:
// 1) input shape
// 2) both municipalities exist
// 3) adjacency
// 4) eligible donor capacity
// 5) donor excess
// 6) recipient shortfall.
// A proposal reserves nothing; commit re-validates against fresh state.
func (u ProposeReallocationUseCase) Execute(ctx context.Context, cmd ProposeReallocationCommand) (ProposeReallocationResult, error) {
	logger := application.ResolveLogger(u.Logger)
	donorID := strings.TrimSpace(cmd.DonorID)
	recipientID := strings.TrimSpace(cmd.RecipientID)
	const op = "propose reallocation"

	switch {
	case donorID == "" || recipientID == "":
		return ProposeReallocationResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "donor and recipient are required")
	case donorID == recipientID:
		return ProposeReallocationResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "donor and recipient must differ",
			domainerrors.Municipality(donorID))
	case cmd.Quantity <= 0:
		return ProposeReallocationResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "quantity must be positive",
			domainerrors.Municipality(donorID), domainerrors.Requested(cmd.Quantity))
	}

	if _, err := u.State.Municipalities.GetMunicipality(ctx, donorID); err != nil {
		return ProposeReallocationResult{}, err
	}
	if _, err := u.State.Municipalities.GetMunicipality(ctx, recipientID); err != nil {
		return ProposeReallocationResult{}, err
	}

	neighbours, err := u.Adjacency.Adjacency(ctx, donorID)
	if err != nil {
		return ProposeReallocationResult{}, err
	}
	if !services.IsAdjacent(neighbours, recipientID) {
		logger.Warn("reallocation rejected: not adjacent",
			"event", "compliance_reallocation_not_adjacent",
			"module", application.LogModule,
			"layer", "application",
			"donor_id", donorID,
			"recipient_id", recipientID,
		)
		return ProposeReallocationResult{}, domainerrors.Reject(domainerrors.ErrAdjacency, op,
			recipientID+" is not in the adjacency set of "+donorID,
			domainerrors.Municipality(donorID), domainerrors.Requested(cmd.Quantity))
	}

	release, err := u.Locker.Lock(ctx, LockKey(donorID), LockKey(recipientID))
	if err != nil {
		return ProposeReallocationResult{}, err
	}
	defer release()

	now := nowFrom(u.Clock)
	donorIn, err := u.State.LoadInput(ctx, donorID, now)
	if err != nil {
		return ProposeReallocationResult{}, err
	}
	recipientIn, err := u.State.LoadInput(ctx, recipientID, now)
	if err != nil {
		return ProposeReallocationResult{}, err
	}
	donor := services.Evaluate(donorIn)
	recipient := services.Evaluate(recipientIn)

	justification, eligible := services.SelectJustification(donorIn.Sites, donorID, donorIn.Reallocations, cmd.Quantity, now)
	if eligible < cmd.Quantity {
		logger.Warn("reallocation rejected: insufficient eligible sites",
			"event", "compliance_reallocation_ineligible",
			"module", application.LogModule,
			"layer", "application",
			"donor_id", donorID,
			"quantity", cmd.Quantity,
			"eligible", eligible,
		)
		return ProposeReallocationResult{}, domainerrors.Reject(domainerrors.ErrEligibility, op,
			"donor capacity is backed by excluded or already cited sites",
			domainerrors.Municipality(donorID), domainerrors.Requested(cmd.Quantity), domainerrors.Available(eligible))
	}
	if cmd.Quantity > donor.Excess {
		return ProposeReallocationResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "quantity exceeds donor excess",
			domainerrors.Municipality(donorID), domainerrors.Requested(cmd.Quantity), domainerrors.Available(donor.Excess))
	}
	if recipient.Shortfall == 0 {
		return ProposeReallocationResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "recipient has no shortfall",
			domainerrors.Municipality(recipientID), domainerrors.Requested(cmd.Quantity), domainerrors.Available(0))
	}
	if cmd.Quantity > recipient.AdjustedRequirement {
		return ProposeReallocationResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "quantity exceeds recipient adjusted requirement",
			domainerrors.Municipality(recipientID), domainerrors.Requested(cmd.Quantity), domainerrors.Available(recipient.AdjustedRequirement))
	}

	reallocationID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return ProposeReallocationResult{}, err
	}
	realloc := entities.Reallocation{
		ReallocationID:  reallocationID,
		DonorID:         donorID,
		RecipientID:     recipientID,
		Quantity:        cmd.Quantity,
		Reason:          strings.TrimSpace(cmd.Reason),
		Justification:   justification,
		Status:          entities.ReallocationProposed,
		ProposedAt:      now,
		DonorExcessSeen: donor.Excess,
	}
	event, err := newOutboxEvent(ctx, u.IDGenerator, EventReallocationProposed, donorID, now, reallocationEventData(realloc))
	if err != nil {
		return ProposeReallocationResult{}, err
	}
	if err := u.Reallocations.AppendReallocation(ctx, realloc, event); err != nil {
		logger.Error("propose reallocation write failed",
			"event", "compliance_reallocation_propose_failed",
			"module", application.LogModule,
			"layer", "application",
			"donor_id", donorID,
			"recipient_id", recipientID,
			"error", err.Error(),
		)
		return ProposeReallocationResult{}, err
	}

	logger.Info("reallocation proposed",
		"event", "compliance_reallocation_proposed",
		"module", application.LogModule,
		"layer", "application",
		"reallocation_id", realloc.ReallocationID,
		"donor_id", donorID,
		"recipient_id", recipientID,
		"quantity", realloc.Quantity,
		"donor_excess", donor.Excess,
	)
	return ProposeReallocationResult{Reallocation: realloc, Donor: donor, Recipient: recipient}, nil
}

func reallocationEventData(realloc entities.Reallocation) map[string]any {
	return map[string]any{
		"reallocation_id":   realloc.ReallocationID,
		"municipality_id":   realloc.DonorID,
		"donor_id":          realloc.DonorID,
		"recipient_id":      realloc.RecipientID,
		"quantity":          realloc.Quantity,
		"status":            string(realloc.Status),
		"included_site_ids": realloc.Justification.IncludedSiteIDs,
	}
}
