package application

import (
	"context"
	"strings"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/services"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"

	"golang.org/x/sync/errgroup"
)

// StateReader gathers a consistent view of registry and ledger state and feeds it
// to the pure evaluator. It holds no state of its own.
type StateReader struct {
	Municipalities ports.MunicipalityDirectory
	Sites          ports.SiteRegistry
	Offsets        ports.OffsetLedger
	Events         ports.EventLedger
	Reallocations  ports.ReallocationLedger
}

// LoadInput reads everything the evaluator needs for one municipality.
func (r StateReader) LoadInput(ctx context.Context, municipalityID string, asOf time.Time) (services.EvaluationInput, error) {
	municipalityID = strings.TrimSpace(municipalityID)
	if municipalityID == "" {
		return services.EvaluationInput{}, domainerrors.Reject(domainerrors.ErrValidation, "evaluate", "municipality id is required")
	}

	in := services.EvaluationInput{AsOf: asOf.UTC()}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		municipality, err := r.Municipalities.GetMunicipality(groupCtx, municipalityID)
		in.Municipality = municipality
		return err
	})
	group.Go(func() error {
		sites, err := r.Sites.ListSitesByMunicipality(groupCtx, municipalityID)
		in.Sites = sites
		return err
	})
	group.Go(func() error {
		offsets, err := r.Offsets.ListOffsets(groupCtx, municipalityID)
		in.Offsets = offsets
		return err
	})
	group.Go(func() error {
		events, err := r.Events.ListEvents(groupCtx, municipalityID)
		in.Events = events
		return err
	})
	group.Go(func() error {
		reallocations, err := r.Reallocations.ListReallocations(groupCtx, municipalityID)
		in.Reallocations = reallocations
		return err
	})
	if err := group.Wait(); err != nil {
		return services.EvaluationInput{}, err
	}
	return in, nil
}

func (r StateReader) Evaluate(ctx context.Context, municipalityID string, asOf time.Time) (entities.ComplianceResult, error) {
	in, err := r.LoadInput(ctx, municipalityID, asOf)
	if err != nil {
		return entities.ComplianceResult{}, err
	}
	return services.Evaluate(in), nil
}

// EvaluateAll loads the whole jurisdiction once and evaluates every municipality
// in id order.
func (r StateReader) EvaluateAll(ctx context.Context, asOf time.Time) ([]entities.ComplianceResult, error) {
	asOf = asOf.UTC()

	var (
		municipalities []entities.Municipality
		sites          []entities.Site
		offsets        []entities.Offset
		events         []entities.EventRecord
		reallocations  []entities.Reallocation
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		municipalities, err = r.Municipalities.ListMunicipalities(groupCtx)
		return err
	})
	group.Go(func() (err error) {
		sites, err = r.Sites.ListActiveSites(groupCtx, asOf)
		return err
	})
	group.Go(func() (err error) {
		offsets, err = r.Offsets.ListOffsets(groupCtx, "")
		return err
	})
	group.Go(func() (err error) {
		events, err = r.Events.ListEvents(groupCtx, "")
		return err
	})
	group.Go(func() (err error) {
		reallocations, err = r.Reallocations.ListReallocations(groupCtx, "")
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sitesBy := make(map[string][]entities.Site)
	for _, site := range sites {
		sitesBy[site.MunicipalityID] = append(sitesBy[site.MunicipalityID], site)
	}
	offsetsBy := make(map[string][]entities.Offset)
	for _, offset := range offsets {
		offsetsBy[offset.MunicipalityID] = append(offsetsBy[offset.MunicipalityID], offset)
	}
	eventsBy := make(map[string][]entities.EventRecord)
	for _, event := range events {
		eventsBy[event.MunicipalityID] = append(eventsBy[event.MunicipalityID], event)
	}
	reallocationsBy := make(map[string][]entities.Reallocation)
	for _, realloc := range reallocations {
		reallocationsBy[realloc.DonorID] = append(reallocationsBy[realloc.DonorID], realloc)
		if realloc.RecipientID != realloc.DonorID {
			reallocationsBy[realloc.RecipientID] = append(reallocationsBy[realloc.RecipientID], realloc)
		}
	}

	results := make([]entities.ComplianceResult, 0, len(municipalities))
	for _, municipality := range municipalities {
		id := municipality.MunicipalityID
		results = append(results, services.Evaluate(services.EvaluationInput{
			Municipality:  municipality,
			Sites:         sitesBy[id],
			Offsets:       offsetsBy[id],
			Events:        eventsBy[id],
			Reallocations: reallocationsBy[id],
			AsOf:          asOf,
		}))
	}
	return results, nil
}
