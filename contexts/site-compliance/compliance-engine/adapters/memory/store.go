package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	domainerrors "sitecompliance/contexts/site-compliance/compliance-engine/domain/errors"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	municipalities map[string]entities.Municipality
	sites          map[string]entities.Site
	adjacency      map[string]map[string]struct{}
	offsets        map[string]entities.Offset
	events         map[string]entities.EventRecord
	reallocations  map[string]entities.Reallocation
	snapshots      []entities.ComplianceSnapshot
	outbox         map[string]outboxRecord

	locks *KeyedLocker
	clock func() time.Time
}

type outboxRecord struct {
	Message ports.OutboxMessage
	Status  string
	SentAt  *time.Time
}

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

func NewStore() *Store {
	return &Store{
		municipalities: make(map[string]entities.Municipality),
		sites:          make(map[string]entities.Site),
		adjacency:      make(map[string]map[string]struct{}),
		offsets:        make(map[string]entities.Offset),
		events:         make(map[string]entities.EventRecord),
		reallocations:  make(map[string]entities.Reallocation),
		outbox:         make(map[string]outboxRecord),
		locks:          NewKeyedLocker(),
	}
}

// SetClock pins the store clock, mostly for tests that walk through time.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	clock := s.clock
	s.mu.RUnlock()
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Lock(ctx context.Context, keys ...string) (func(), error) {
	return s.locks.Lock(ctx, keys...)
}

func (s *Store) UpsertMunicipality(_ context.Context, municipality entities.Municipality) error {
	if !municipality.Valid() {
		return domainerrors.Reject(domainerrors.ErrValidation, "upsert municipality", "id, name and non-negative population are required",
			domainerrors.Municipality(municipality.MunicipalityID))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.municipalities {
		if id != municipality.MunicipalityID && strings.EqualFold(existing.Name, municipality.Name) {
			return domainerrors.Reject(domainerrors.ErrConflict, "upsert municipality", "name already used by "+id,
				domainerrors.Municipality(municipality.MunicipalityID))
		}
	}
	s.municipalities[municipality.MunicipalityID] = municipality
	return nil
}

func (s *Store) UpsertSite(_ context.Context, site entities.Site) error {
	if strings.TrimSpace(site.SiteID) == "" || strings.TrimSpace(site.MunicipalityID) == "" {
		return domainerrors.Reject(domainerrors.ErrValidation, "upsert site", "site id and municipality are required", domainerrors.Record(site.SiteID))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.municipalities[site.MunicipalityID]; !ok {
		return domainerrors.Reject(domainerrors.ErrNotFound, "upsert site", "owning municipality is unknown",
			domainerrors.Municipality(site.MunicipalityID), domainerrors.Record(site.SiteID))
	}
	site.Programs = append([]string(nil), site.Programs...)
	s.sites[site.SiteID] = site
	return nil
}

func (s *Store) AddAdjacency(_ context.Context, municipalityID string, neighbourID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{municipalityID, neighbourID} {
		if _, ok := s.municipalities[id]; !ok {
			return domainerrors.Reject(domainerrors.ErrNotFound, "add adjacency", "municipality is unknown", domainerrors.Municipality(id))
		}
	}
	if s.adjacency[municipalityID] == nil {
		s.adjacency[municipalityID] = make(map[string]struct{})
	}
	s.adjacency[municipalityID][neighbourID] = struct{}{}
	return nil
}

func (s *Store) ListMunicipalities(_ context.Context) ([]entities.Municipality, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Municipality, 0, len(s.municipalities))
	for _, item := range s.municipalities {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].MunicipalityID < items[j].MunicipalityID
	})
	return items, nil
}

func (s *Store) GetMunicipality(_ context.Context, municipalityID string) (entities.Municipality, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.municipalities[strings.TrimSpace(municipalityID)]
	if !ok {
		return entities.Municipality{}, domainerrors.Reject(domainerrors.ErrNotFound, "get municipality", "", domainerrors.Municipality(municipalityID))
	}
	return item, nil
}

func (s *Store) UpdatePopulation(_ context.Context, update ports.PopulationUpdate, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.municipalities[update.MunicipalityID]
	if !ok {
		return domainerrors.Reject(domainerrors.ErrNotFound, "update population", "", domainerrors.Municipality(update.MunicipalityID))
	}
	if err := s.stageOutbox(event); err != nil {
		return err
	}
	item.Population = update.Population
	item.CensusYear = update.CensusYear
	item.UpdatedAt = update.UpdatedAt.UTC()
	s.municipalities[update.MunicipalityID] = item
	return nil
}

func (s *Store) ListActiveSites(_ context.Context, asOf time.Time) ([]entities.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Site, 0, len(s.sites))
	for _, site := range s.sites {
		if site.ActiveAt(asOf) {
			items = append(items, site)
		}
	}
	sortSites(items)
	return items, nil
}

func (s *Store) ListSitesByMunicipality(_ context.Context, municipalityID string) ([]entities.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Site, 0)
	for _, site := range s.sites {
		if site.MunicipalityID == municipalityID {
			items = append(items, site)
		}
	}
	sortSites(items)
	return items, nil
}

func (s *Store) Adjacency(_ context.Context, municipalityID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.municipalities[municipalityID]; !ok {
		return nil, domainerrors.Reject(domainerrors.ErrNotFound, "adjacency", "", domainerrors.Municipality(municipalityID))
	}
	items := make([]string, 0, len(s.adjacency[municipalityID]))
	for id := range s.adjacency[municipalityID] {
		items = append(items, id)
	}
	sort.Strings(items)
	return items, nil
}

func (s *Store) ListOffsets(_ context.Context, municipalityID string) ([]entities.Offset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Offset, 0)
	for _, item := range s.offsets {
		if municipalityID == "" || item.MunicipalityID == municipalityID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OffsetID < items[j].OffsetID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetOffset(_ context.Context, offsetID string) (entities.Offset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.offsets[strings.TrimSpace(offsetID)]
	if !ok {
		return entities.Offset{}, domainerrors.Reject(domainerrors.ErrNotFound, "get offset", "", domainerrors.Record(offsetID))
	}
	return item, nil
}

func (s *Store) AppendOffset(_ context.Context, offset entities.Offset, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOffsetYearLocked(offset, ""); err != nil {
		return err
	}
	if err := s.stageOutbox(event); err != nil {
		return err
	}
	s.offsets[offset.OffsetID] = offset
	return nil
}

func (s *Store) SupersedeOffset(_ context.Context, previousID string, replacement entities.Offset, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.offsets[previousID]
	if !ok {
		return domainerrors.Reject(domainerrors.ErrNotFound, "supersede offset", "", domainerrors.Record(previousID))
	}
	if previous.Superseded() {
		return domainerrors.Reject(domainerrors.ErrStaleState, "supersede offset", "already superseded by "+previous.SupersededBy,
			domainerrors.Record(previousID))
	}
	if err := s.checkOffsetYearLocked(replacement, previousID); err != nil {
		return err
	}
	if err := s.stageOutbox(event); err != nil {
		return err
	}
	at := replacement.CreatedAt.UTC()
	previous.SupersededBy = replacement.OffsetID
	previous.SupersededAt = &at
	s.offsets[previousID] = previous
	s.offsets[replacement.OffsetID] = replacement
	return nil
}

func (s *Store) checkOffsetYearLocked(offset entities.Offset, ignoreID string) error {
	if _, exists := s.offsets[offset.OffsetID]; exists {
		return domainerrors.Reject(domainerrors.ErrConflict, "append offset", "offset id already exists", domainerrors.Record(offset.OffsetID))
	}
	for _, existing := range s.offsets {
		if existing.OffsetID == ignoreID || existing.Superseded() {
			continue
		}
		if existing.MunicipalityID == offset.MunicipalityID && existing.EffectiveYear() == offset.EffectiveYear() {
			return domainerrors.Reject(domainerrors.ErrConflict, "append offset", "an offset already exists for this year",
				domainerrors.Municipality(offset.MunicipalityID), domainerrors.Record(existing.OffsetID))
		}
	}
	return nil
}

func (s *Store) ListEvents(_ context.Context, municipalityID string) ([]entities.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.EventRecord, 0)
	for _, item := range s.events {
		if municipalityID == "" || item.MunicipalityID == municipalityID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ValidFrom.Equal(items[j].ValidFrom) {
			return items[i].EventID < items[j].EventID
		}
		return items[i].ValidFrom.Before(items[j].ValidFrom)
	})
	return items, nil
}

func (s *Store) GetEvent(_ context.Context, eventID string) (entities.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.events[strings.TrimSpace(eventID)]
	if !ok {
		return entities.EventRecord{}, domainerrors.Reject(domainerrors.ErrNotFound, "get event", "", domainerrors.Record(eventID))
	}
	return item, nil
}

func (s *Store) AppendEvent(_ context.Context, record entities.EventRecord, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[record.EventID]; exists {
		return domainerrors.Reject(domainerrors.ErrConflict, "append event", "event id already exists", domainerrors.Record(record.EventID))
	}
	if err := s.stageOutbox(event); err != nil {
		return err
	}
	s.events[record.EventID] = record
	return nil
}

func (s *Store) ListReallocations(_ context.Context, municipalityID string) ([]entities.Reallocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Reallocation, 0)
	for _, item := range s.reallocations {
		if municipalityID == "" || item.DonorID == municipalityID || item.RecipientID == municipalityID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ProposedAt.Equal(items[j].ProposedAt) {
			return items[i].ReallocationID < items[j].ReallocationID
		}
		return items[i].ProposedAt.Before(items[j].ProposedAt)
	})
	return items, nil
}

func (s *Store) GetReallocation(_ context.Context, reallocationID string) (entities.Reallocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.reallocations[strings.TrimSpace(reallocationID)]
	if !ok {
		return entities.Reallocation{}, domainerrors.Reject(domainerrors.ErrNotFound, "get reallocation", "", domainerrors.Record(reallocationID))
	}
	return item, nil
}

func (s *Store) AppendReallocation(_ context.Context, realloc entities.Reallocation, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reallocations[realloc.ReallocationID]; exists {
		return domainerrors.Reject(domainerrors.ErrConflict, "append reallocation", "reallocation id already exists",
			domainerrors.Record(realloc.ReallocationID))
	}
	if err := s.stageOutbox(event); err != nil {
		return err
	}
	s.reallocations[realloc.ReallocationID] = realloc
	return nil
}

func (s *Store) TransitionReallocation(_ context.Context, transition ports.ReallocationTransition, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.reallocations[transition.ReallocationID]
	if !ok {
		return domainerrors.Reject(domainerrors.ErrNotFound, "transition reallocation", "", domainerrors.Record(transition.ReallocationID))
	}
	if item.Status != transition.From {
		return domainerrors.Reject(domainerrors.ErrStaleState, "transition reallocation",
			"expected status "+string(transition.From)+", found "+string(item.Status),
			domainerrors.Record(transition.ReallocationID))
	}
	if err := s.stageOutbox(event); err != nil {
		return err
	}
	at := transition.At.UTC()
	switch transition.To {
	case entities.ReallocationCommitted:
		item.CommittedAt = &at
	case entities.ReallocationReversed:
		item.ReversedAt = &at
		item.ReversalReason = transition.Reason
	}
	item.Status = transition.To
	s.reallocations[transition.ReallocationID] = item
	return nil
}

func (s *Store) AppendSnapshots(_ context.Context, snapshots []entities.ComplianceSnapshot, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stageOutbox(event); err != nil {
		return err
	}
	for _, snapshot := range snapshots {
		snapshot.Result.Issues = append([]entities.Issue(nil), snapshot.Result.Issues...)
		s.snapshots = append(s.snapshots, snapshot)
	}
	return nil
}

func (s *Store) ListSnapshots(_ context.Context, municipalityID string) ([]entities.ComplianceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.ComplianceSnapshot, 0)
	for _, item := range s.snapshots {
		if municipalityID == "" || item.Result.MunicipalityID == municipalityID {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CapturedAt.Before(items[j].CapturedAt)
	})
	return items, nil
}

// stageOutbox must run before any map mutation so a failed encode leaves the
// ledgers untouched.
func (s *Store) stageOutbox(event ports.OutboxEvent) error {
	if strings.TrimSpace(event.EventID) == "" {
		return nil
	}
	if _, exists := s.outbox[event.EventID]; exists {
		return domainerrors.Reject(domainerrors.ErrRepositoryInvariantBroke, "append outbox", "duplicate event id", domainerrors.Record(event.EventID))
	}
	envelope, err := event.Envelope()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.outbox[event.EventID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			CreatedAt:    event.OccurredAt.UTC(),
		},
		Status: outboxStatusPending,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, row.Message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.Reject(domainerrors.ErrNotFound, "mark outbox sent", "", domainerrors.Record(outboxID))
	}
	ts := sentAt.UTC()
	row.Status = outboxStatusSent
	row.SentAt = &ts
	s.outbox[row.Message.OutboxID] = row
	return nil
}

func sortSites(items []entities.Site) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].SiteID < items[j].SiteID
	})
}
