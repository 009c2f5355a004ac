package queries

import (
	"context"
	"log/slog"
	"time"

	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/services"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
)

type ComputeRequirementUseCase struct {
	Clock ports.Clock
}

func (u ComputeRequirementUseCase) Execute(population int64) (entities.RequirementSnapshot, error) {
	if population < 0 {
		return entities.RequirementSnapshot{}, domainerrors.Reject(domainerrors.ErrValidation, "compute requirement",
			"population must not be negative", domainerrors.Requested(population))
	}
	return services.RequirementFor(entities.Municipality{Population: population}, resolveNow(u.Clock, time.Time{})), nil
}

type EvaluateQuery struct {
	MunicipalityID string
	// AsOf defaults to the current instant when zero.
	AsOf time.Time
}

type EvaluateUseCase struct {
	State  application.StateReader
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u EvaluateUseCase) Execute(ctx context.Context, query EvaluateQuery) (entities.ComplianceResult, error) {
	logger := application.ResolveLogger(u.Logger)
	asOf := resolveNow(u.Clock, query.AsOf)

	result, err := u.State.Evaluate(ctx, query.MunicipalityID, asOf)
	if err != nil {
		logger.Warn("evaluate municipality failed",
			"event", "compliance_evaluate_failed",
			"module", application.LogModule,
			"layer", "application",
			"municipality_id", query.MunicipalityID,
			"error", err.Error(),
		)
		return entities.ComplianceResult{}, err
	}
	if len(result.Issues) > 0 {
		logger.Warn("evaluation reported data issues",
			"event", "compliance_evaluate_issues",
			"module", application.LogModule,
			"layer", "application",
			"municipality_id", result.MunicipalityID,
			"issues_count", len(result.Issues),
		)
	}
	return result, nil
}

type EvaluateAllUseCase struct {
	State  application.StateReader
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u EvaluateAllUseCase) Execute(ctx context.Context, asOf time.Time) ([]entities.ComplianceResult, error) {
	logger := application.ResolveLogger(u.Logger)
	asOf = resolveNow(u.Clock, asOf)

	results, err := u.State.EvaluateAll(ctx, asOf)
	if err != nil {
		logger.Error("evaluate all failed",
			"event", "compliance_evaluate_all_failed",
			"module", application.LogModule,
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}

	shortfalls, excesses := 0, 0
	for _, result := range results {
		switch result.Status {
		case entities.StatusShortfall:
			shortfalls++
		case entities.StatusExcess:
			excesses++
		}
	}
	logger.Info("evaluate all completed",
		"event", "compliance_evaluate_all_completed",
		"module", application.LogModule,
		"layer", "application",
		"municipality_count", len(results),
		"shortfall_count", shortfalls,
		"excess_count", excesses,
	)
	return results, nil
}

func resolveNow(clock ports.Clock, asOf time.Time) time.Time {
	if !asOf.IsZero() {
		return asOf.UTC()
	}
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
