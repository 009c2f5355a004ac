package commands

import (
	"context"
	"log/slog"
	"strings"

	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"

	"github.com/shopspring/decimal"
)

type SupersedeOffsetCommand struct {
	OffsetID           string
	Percentage         decimal.Decimal
	AnnualPickupVolume int64
}

type SupersedeOffsetResult struct {
	Previous    entities.Offset
	Replacement entities.Offset
}

// SupersedeOffsetUseCase replaces an offset for the same municipality and year.
// The old record stays in the ledger and reads as expired from the supersession
// instant.
type SupersedeOffsetUseCase struct {
	Offsets     ports.OffsetLedger
	Locker      ports.Locker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u SupersedeOffsetUseCase) Execute(ctx context.Context, cmd SupersedeOffsetCommand) (SupersedeOffsetResult, error) {
	logger := application.ResolveLogger(u.Logger)
	offsetID := strings.TrimSpace(cmd.OffsetID)
	if offsetID == "" {
		return SupersedeOffsetResult{}, domainerrors.Reject(domainerrors.ErrValidation, "supersede offset", "offset id is required")
	}

	previous, err := u.Offsets.GetOffset(ctx, offsetID)
	if err != nil {
		return SupersedeOffsetResult{}, err
	}
	if err := validateOffsetInput("supersede offset", previous.MunicipalityID, cmd.Percentage, cmd.AnnualPickupVolume); err != nil {
		return SupersedeOffsetResult{}, err
	}

	release, err := u.Locker.Lock(ctx, LockKey(previous.MunicipalityID))
	if err != nil {
		return SupersedeOffsetResult{}, err
	}
	defer release()

	// Re-read under the lock; a concurrent supersede may have landed first.
	previous, err = u.Offsets.GetOffset(ctx, offsetID)
	if err != nil {
		return SupersedeOffsetResult{}, err
	}
	if previous.Superseded() {
		return SupersedeOffsetResult{}, domainerrors.Reject(domainerrors.ErrConflict, "supersede offset",
			"offset was already superseded by "+previous.SupersededBy,
			domainerrors.Municipality(previous.MunicipalityID),
			domainerrors.Record(offsetID),
		)
	}

	now := nowFrom(u.Clock)
	replacementID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return SupersedeOffsetResult{}, err
	}
	replacement := entities.Offset{
		OffsetID:           replacementID,
		MunicipalityID:     previous.MunicipalityID,
		Percentage:         cmd.Percentage,
		AnnualPickupVolume: cmd.AnnualPickupVolume,
		EffectiveDate:      previous.EffectiveDate,
		CreatedAt:          now,
	}
	// Superseding a pending offset keeps its effective date; superseding an
	// active one takes effect immediately.
	if now.After(previous.EffectiveDate) && now.Year() == previous.EffectiveYear() {
		replacement.EffectiveDate = now
	}

	data := offsetEventData(replacement)
	data["superseded_offset_id"] = previous.OffsetID
	event, err := newOutboxEvent(ctx, u.IDGenerator, EventOffsetSuperseded, previous.MunicipalityID, now, data)
	if err != nil {
		return SupersedeOffsetResult{}, err
	}
	if err := u.Offsets.SupersedeOffset(ctx, previous.OffsetID, replacement, event); err != nil {
		logger.Error("supersede offset write failed",
			"event", "compliance_offset_supersede_failed",
			"module", application.LogModule,
			"layer", "application",
			"offset_id", previous.OffsetID,
			"error", err.Error(),
		)
		return SupersedeOffsetResult{}, err
	}

	at := now
	previous.SupersededBy = replacement.OffsetID
	previous.SupersededAt = &at

	logger.Info("offset superseded",
		"event", "compliance_offset_superseded",
		"module", application.LogModule,
		"layer", "application",
		"municipality_id", previous.MunicipalityID,
		"offset_id", previous.OffsetID,
		"replacement_id", replacement.OffsetID,
	)
	return SupersedeOffsetResult{Previous: previous, Replacement: replacement}, nil
}
