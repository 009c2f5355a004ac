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
)

type ApplyEventCommand struct {
	MunicipalityID string
	Description    string
	Credit         int
	ValidFrom      time.Time
	ValidTo        time.Time
}

type ApplyEventResult struct {
	Event  entities.EventRecord
	Status entities.LedgerStatus
}

type ApplyEventUseCase struct {
	Municipalities ports.MunicipalityDirectory
	Events         ports.EventLedger
	Locker         ports.Locker
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

func (u ApplyEventUseCase) Execute(ctx context.Context, cmd ApplyEventCommand) (ApplyEventResult, error) {
	logger := application.ResolveLogger(u.Logger)
	municipalityID := strings.TrimSpace(cmd.MunicipalityID)
	switch {
	case municipalityID == "":
		return ApplyEventResult{}, domainerrors.Reject(domainerrors.ErrValidation, "apply event", "municipality id is required")
	case cmd.Credit <= 0:
		return ApplyEventResult{}, domainerrors.Reject(domainerrors.ErrValidation, "apply event", "credit must be positive",
			domainerrors.Municipality(municipalityID), domainerrors.Requested(cmd.Credit))
	case cmd.ValidFrom.IsZero() || cmd.ValidTo.IsZero():
		return ApplyEventResult{}, domainerrors.Reject(domainerrors.ErrValidation, "apply event", "validity window is required",
			domainerrors.Municipality(municipalityID))
	case entities.DayOf(cmd.ValidTo).Before(entities.DayOf(cmd.ValidFrom)):
		return ApplyEventResult{}, domainerrors.Reject(domainerrors.ErrValidation, "apply event", "valid_to precedes valid_from",
			domainerrors.Municipality(municipalityID),
			domainerrors.Requested(cmd.ValidFrom.Format(time.DateOnly)+".."+cmd.ValidTo.Format(time.DateOnly)))
	}

	release, err := u.Locker.Lock(ctx, LockKey(municipalityID))
	if err != nil {
		return ApplyEventResult{}, err
	}
	defer release()

	if _, err := u.Municipalities.GetMunicipality(ctx, municipalityID); err != nil {
		return ApplyEventResult{}, err
	}

	now := nowFrom(u.Clock)
	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return ApplyEventResult{}, err
	}
	record := entities.EventRecord{
		EventID:        eventID,
		MunicipalityID: municipalityID,
		Description:    strings.TrimSpace(cmd.Description),
		Credit:         cmd.Credit,
		ValidFrom:      entities.DayOf(cmd.ValidFrom),
		ValidTo:        entities.DayOf(cmd.ValidTo),
		CreatedAt:      now,
	}
	event, err := newOutboxEvent(ctx, u.IDGenerator, EventEventApplied, municipalityID, now, map[string]any{
		"event_id":        record.EventID,
		"municipality_id": record.MunicipalityID,
		"credit":          record.Credit,
		"valid_from":      record.ValidFrom.Format(time.DateOnly),
		"valid_to":        record.ValidTo.Format(time.DateOnly),
	})
	if err != nil {
		return ApplyEventResult{}, err
	}
	if err := u.Events.AppendEvent(ctx, record, event); err != nil {
		logger.Error("apply event write failed",
			"event", "compliance_event_write_failed",
			"module", application.LogModule,
			"layer", "application",
			"municipality_id", municipalityID,
			"error", err.Error(),
		)
		return ApplyEventResult{}, err
	}

	logger.Info("event applied",
		"event", "compliance_event_applied",
		"module", application.LogModule,
		"layer", "application",
		"municipality_id", municipalityID,
		"event_id", record.EventID,
		"credit", record.Credit,
	)
	return ApplyEventResult{Event: record, Status: record.StatusAt(now)}, nil
}
