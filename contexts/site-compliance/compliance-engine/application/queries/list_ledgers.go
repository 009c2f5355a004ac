package queries

import (
	"context"
	"strings"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
)

type OffsetView struct {
	Offset entities.Offset
	Status entities.LedgerStatus
}

type EventView struct {
	Event  entities.EventRecord
	Status entities.LedgerStatus
}

type LedgerQuery struct {
	MunicipalityID string
	AsOf           time.Time
	Status         string
}

type ListOffsetsUseCase struct {
	Municipalities ports.MunicipalityDirectory
	Offsets        ports.OffsetLedger
	Clock          ports.Clock
}

func (u ListOffsetsUseCase) Execute(ctx context.Context, query LedgerQuery) ([]OffsetView, error) {
	if err := ensureMunicipality(ctx, u.Municipalities, query.MunicipalityID); err != nil {
		return nil, err
	}
	asOf := resolveNow(u.Clock, query.AsOf)
	items, err := u.Offsets.ListOffsets(ctx, strings.TrimSpace(query.MunicipalityID))
	if err != nil {
		return nil, err
	}
	views := make([]OffsetView, 0, len(items))
	for _, item := range items {
		status := item.StatusAt(asOf)
		if query.Status != "" && string(status) != query.Status {
			continue
		}
		views = append(views, OffsetView{Offset: item, Status: status})
	}
	return views, nil
}

type ListEventsUseCase struct {
	Municipalities ports.MunicipalityDirectory
	Events         ports.EventLedger
	Clock          ports.Clock
}

func (u ListEventsUseCase) Execute(ctx context.Context, query LedgerQuery) ([]EventView, error) {
	if err := ensureMunicipality(ctx, u.Municipalities, query.MunicipalityID); err != nil {
		return nil, err
	}
	asOf := resolveNow(u.Clock, query.AsOf)
	items, err := u.Events.ListEvents(ctx, strings.TrimSpace(query.MunicipalityID))
	if err != nil {
		return nil, err
	}
	views := make([]EventView, 0, len(items))
	for _, item := range items {
		status := item.StatusAt(asOf)
		if query.Status != "" && string(status) != query.Status {
			continue
		}
		views = append(views, EventView{Event: item, Status: status})
	}
	return views, nil
}

type ListReallocationsUseCase struct {
	Municipalities ports.MunicipalityDirectory
	Reallocations  ports.ReallocationLedger
}

func (u ListReallocationsUseCase) Execute(ctx context.Context, query LedgerQuery) ([]entities.Reallocation, error) {
	if err := ensureMunicipality(ctx, u.Municipalities, query.MunicipalityID); err != nil {
		return nil, err
	}
	items, err := u.Reallocations.ListReallocations(ctx, strings.TrimSpace(query.MunicipalityID))
	if err != nil {
		return nil, err
	}
	if query.Status == "" {
		return items, nil
	}
	filtered := make([]entities.Reallocation, 0, len(items))
	for _, item := range items {
		if string(item.Status) == query.Status {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

type GetReallocationUseCase struct {
	Reallocations ports.ReallocationLedger
}

func (u GetReallocationUseCase) Execute(ctx context.Context, reallocationID string) (entities.Reallocation, error) {
	if strings.TrimSpace(reallocationID) == "" {
		return entities.Reallocation{}, domainerrors.Reject(domainerrors.ErrValidation, "get reallocation", "reallocation id is required")
	}
	return u.Reallocations.GetReallocation(ctx, reallocationID)
}

type ListSnapshotsUseCase struct {
	Municipalities ports.MunicipalityDirectory
	Snapshots      ports.SnapshotStore
}

func (u ListSnapshotsUseCase) Execute(ctx context.Context, municipalityID string) ([]entities.ComplianceSnapshot, error) {
	if err := ensureMunicipality(ctx, u.Municipalities, municipalityID); err != nil {
		return nil, err
	}
	return u.Snapshots.ListSnapshots(ctx, strings.TrimSpace(municipalityID))
}

type ListMunicipalitiesUseCase struct {
	Municipalities ports.MunicipalityDirectory
}

func (u ListMunicipalitiesUseCase) Execute(ctx context.Context) ([]entities.Municipality, error) {
	return u.Municipalities.ListMunicipalities(ctx)
}

// ensureMunicipality turns an unknown id into NotFound; an empty id means all.
func ensureMunicipality(ctx context.Context, directory ports.MunicipalityDirectory, municipalityID string) error {
	municipalityID = strings.TrimSpace(municipalityID)
	if municipalityID == "" || directory == nil {
		return nil
	}
	_, err := directory.GetMunicipality(ctx, municipalityID)
	return err
}
