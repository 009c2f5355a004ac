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

type RefreshCensusCommand struct {
	MunicipalityID string
	Population     int64
	CensusYear     int
}

type RefreshCensusResult struct {
	Municipality entities.Municipality
	Before       entities.RequirementSnapshot
	After        entities.RequirementSnapshot
}

// RefreshCensusUseCase is the only mutation of a municipality record. Captured
// compliance snapshots keep the population they were computed with.
type RefreshCensusUseCase struct {
	Municipalities ports.MunicipalityDirectory
	Locker         ports.Locker
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

func (u RefreshCensusUseCase) Execute(ctx context.Context, cmd RefreshCensusCommand) (RefreshCensusResult, error) {
	logger := application.ResolveLogger(u.Logger)
	municipalityID := strings.TrimSpace(cmd.MunicipalityID)
	const op = "refresh census"
	switch {
	case municipalityID == "":
		return RefreshCensusResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "municipality id is required")
	case cmd.Population < 0:
		return RefreshCensusResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "population must not be negative",
			domainerrors.Municipality(municipalityID), domainerrors.Requested(cmd.Population))
	case cmd.CensusYear < 0:
		return RefreshCensusResult{}, domainerrors.Reject(domainerrors.ErrValidation, op, "census year must not be negative",
			domainerrors.Municipality(municipalityID), domainerrors.Requested(cmd.CensusYear))
	}

	release, err := u.Locker.Lock(ctx, LockKey(municipalityID))
	if err != nil {
		return RefreshCensusResult{}, err
	}
	defer release()

	municipality, err := u.Municipalities.GetMunicipality(ctx, municipalityID)
	if err != nil {
		return RefreshCensusResult{}, err
	}
	if cmd.CensusYear != 0 && cmd.CensusYear < municipality.CensusYear {
		return RefreshCensusResult{}, domainerrors.Reject(domainerrors.ErrConflict, op, "census year is older than the recorded one",
			domainerrors.Municipality(municipalityID), domainerrors.Requested(cmd.CensusYear))
	}

	now := nowFrom(u.Clock)
	before := services.RequirementFor(municipality, now)
	municipality.Population = cmd.Population
	if cmd.CensusYear != 0 {
		municipality.CensusYear = cmd.CensusYear
	}
	municipality.UpdatedAt = now
	after := services.RequirementFor(municipality, now)

	event, err := newOutboxEvent(ctx, u.IDGenerator, EventCensusRefreshed, municipalityID, now, map[string]any{
		"municipality_id":      municipalityID,
		"population":           municipality.Population,
		"census_year":          municipality.CensusYear,
		"previous_requirement": before.BaseRequirement,
		"requirement":          after.BaseRequirement,
	})
	if err != nil {
		return RefreshCensusResult{}, err
	}
	if err := u.Municipalities.UpdatePopulation(ctx, ports.PopulationUpdate{
		MunicipalityID: municipalityID,
		Population:     municipality.Population,
		CensusYear:     municipality.CensusYear,
		UpdatedAt:      now,
	}, event); err != nil {
		logger.Error("refresh census write failed",
			"event", "compliance_census_refresh_failed",
			"module", application.LogModule,
			"layer", "application",
			"municipality_id", municipalityID,
			"error", err.Error(),
		)
		return RefreshCensusResult{}, err
	}

	logger.Info("census refreshed",
		"event", "compliance_census_refreshed",
		"module", application.LogModule,
		"layer", "application",
		"municipality_id", municipalityID,
		"population", municipality.Population,
		"requirement_before", before.BaseRequirement,
		"requirement_after", after.BaseRequirement,
	)
	return RefreshCensusResult{Municipality: municipality, Before: before, After: after}, nil
}
