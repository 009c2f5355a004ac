package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"

	"github.com/shopspring/decimal"
)

type ApplyOffsetCommand struct {
	MunicipalityID     string
	Percentage         decimal.Decimal
	AnnualPickupVolume int64
	// EffectiveDate defaults to the current instant when zero.
	EffectiveDate time.Time
}

type ApplyOffsetResult struct {
	Offset entities.Offset
	Status entities.LedgerStatus
}

type ApplyOffsetUseCase struct {
	Municipalities ports.MunicipalityDirectory
	Offsets        ports.OffsetLedger
	Locker         ports.Locker
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

func (u ApplyOffsetUseCase) Execute(ctx context.Context, cmd ApplyOffsetCommand) (ApplyOffsetResult, error) {
	logger := application.ResolveLogger(u.Logger)
	municipalityID := strings.TrimSpace(cmd.MunicipalityID)
	if err := validateOffsetInput("apply offset", municipalityID, cmd.Percentage, cmd.AnnualPickupVolume); err != nil {
		return ApplyOffsetResult{}, err
	}

	now := nowFrom(u.Clock)
	effective := cmd.EffectiveDate.UTC()
	if cmd.EffectiveDate.IsZero() {
		effective = now
	}

	release, err := u.Locker.Lock(ctx, LockKey(municipalityID))
	if err != nil {
		return ApplyOffsetResult{}, err
	}
	defer release()

	if _, err := u.Municipalities.GetMunicipality(ctx, municipalityID); err != nil {
		return ApplyOffsetResult{}, err
	}
	existing, err := u.Offsets.ListOffsets(ctx, municipalityID)
	if err != nil {
		return ApplyOffsetResult{}, err
	}
	for _, offset := range existing {
		if !offset.Superseded() && offset.EffectiveYear() == effective.Year() {
			logger.Warn("offset already recorded for year",
				"event", "compliance_offset_conflict",
				"module", application.LogModule,
				"layer", "application",
				"municipality_id", municipalityID,
				"offset_id", offset.OffsetID,
				"year", effective.Year(),
			)
			return ApplyOffsetResult{}, domainerrors.Reject(domainerrors.ErrConflict, "apply offset",
				"an offset already exists for this municipality and year; supersede it instead",
				domainerrors.Municipality(municipalityID),
				domainerrors.Record(offset.OffsetID),
				domainerrors.Requested(cmd.Percentage.String()),
			)
		}
	}

	offsetID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return ApplyOffsetResult{}, err
	}
	offset := entities.Offset{
		OffsetID:           offsetID,
		MunicipalityID:     municipalityID,
		Percentage:         cmd.Percentage,
		AnnualPickupVolume: cmd.AnnualPickupVolume,
		EffectiveDate:      effective,
		CreatedAt:          now,
	}
	event, err := newOutboxEvent(ctx, u.IDGenerator, EventOffsetApplied, municipalityID, now, offsetEventData(offset))
	if err != nil {
		return ApplyOffsetResult{}, err
	}
	if err := u.Offsets.AppendOffset(ctx, offset, event); err != nil {
		logger.Error("apply offset write failed",
			"event", "compliance_offset_write_failed",
			"module", application.LogModule,
			"layer", "application",
			"municipality_id", municipalityID,
			"error", err.Error(),
		)
		return ApplyOffsetResult{}, err
	}

	logger.Info("offset applied",
		"event", "compliance_offset_applied",
		"module", application.LogModule,
		"layer", "application",
		"municipality_id", municipalityID,
		"offset_id", offset.OffsetID,
		"percentage", offset.Percentage.String(),
		"effective_year", offset.EffectiveYear(),
	)
	return ApplyOffsetResult{Offset: offset, Status: offset.StatusAt(now)}, nil
}

func validateOffsetInput(op string, municipalityID string, percentage decimal.Decimal, volume int64) error {
	if municipalityID == "" {
		return domainerrors.Reject(domainerrors.ErrValidation, op, "municipality id is required")
	}
	if !entities.ValidPercentage(percentage) {
		return domainerrors.Reject(domainerrors.ErrValidation, op, "percentage must be within [0,100]",
			domainerrors.Municipality(municipalityID),
			domainerrors.Requested(percentage.String()),
		)
	}
	if volume < 0 {
		return domainerrors.Reject(domainerrors.ErrValidation, op, "annual pickup volume must not be negative",
			domainerrors.Municipality(municipalityID),
			domainerrors.Requested(volume),
		)
	}
	return nil
}

func offsetEventData(offset entities.Offset) map[string]any {
	return map[string]any{
		"offset_id":            offset.OffsetID,
		"municipality_id":      offset.MunicipalityID,
		"percentage":           offset.Percentage.String(),
		"annual_pickup_volume": offset.AnnualPickupVolume,
		"effective_date":       offset.EffectiveDate.Format(time.RFC3339),
	}
}
