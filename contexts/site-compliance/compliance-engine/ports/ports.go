package ports

import (
	"context"
	"encoding/json"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	contractsv1 "sitecompliance/contracts/gen/events/v1"
)

// MunicipalityDirectory is the read side of the municipality registry plus the
// census refresh write.
type MunicipalityDirectory interface {
	ListMunicipalities(ctx context.Context) ([]entities.Municipality, error)
	GetMunicipality(ctx context.Context, municipalityID string) (entities.Municipality, error)
	UpdatePopulation(ctx context.Context, update PopulationUpdate, event OutboxEvent) error
}

type PopulationUpdate struct {
	MunicipalityID string
	Population     int64
	CensusYear     int
	UpdatedAt      time.Time
}

type SiteRegistry interface {
	ListActiveSites(ctx context.Context, asOf time.Time) ([]entities.Site, error)
	ListSitesByMunicipality(ctx context.Context, municipalityID string) ([]entities.Site, error)
}

type AdjacencyGraph interface {
	Adjacency(ctx context.Context, municipalityID string) ([]string, error)
}

// OffsetLedger is append-mostly; the only mutation is marking a record superseded.
type OffsetLedger interface {
	ListOffsets(ctx context.Context, municipalityID string) ([]entities.Offset, error)
	GetOffset(ctx context.Context, offsetID string) (entities.Offset, error)
	AppendOffset(ctx context.Context, offset entities.Offset, event OutboxEvent) error
	SupersedeOffset(ctx context.Context, previousID string, replacement entities.Offset, event OutboxEvent) error
}

type EventLedger interface {
	ListEvents(ctx context.Context, municipalityID string) ([]entities.EventRecord, error)
	GetEvent(ctx context.Context, eventID string) (entities.EventRecord, error)
	AppendEvent(ctx context.Context, record entities.EventRecord, event OutboxEvent) error
}

// ReallocationLedger lists records where the municipality is donor or recipient.
// TransitionReallocation is a compare-and-set on the status field.
type ReallocationLedger interface {
	ListReallocations(ctx context.Context, municipalityID string) ([]entities.Reallocation, error)
	GetReallocation(ctx context.Context, reallocationID string) (entities.Reallocation, error)
	AppendReallocation(ctx context.Context, realloc entities.Reallocation, event OutboxEvent) error
	TransitionReallocation(ctx context.Context, transition ReallocationTransition, event OutboxEvent) error
}

type ReallocationTransition struct {
	ReallocationID string
	From           entities.ReallocationStatus
	To             entities.ReallocationStatus
	At             time.Time
	Reason         string
}

type SnapshotStore interface {
	AppendSnapshots(ctx context.Context, snapshots []entities.ComplianceSnapshot, event OutboxEvent) error
	ListSnapshots(ctx context.Context, municipalityID string) ([]entities.ComplianceSnapshot, error)
}

// Locker serializes writes per municipality. The returned release func must be
// called exactly once.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (func(), error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

// OutboxEvent is written in the same operation as the ledger change it describes.
type OutboxEvent struct {
	EventID      string
	EventType    string
	PartitionKey string
	OccurredAt   time.Time
	Data         map[string]any
}

const (
	SourceService    = "compliance-engine"
	PartitionKeyPath = "municipality_id"
)

// Envelope renders the canonical envelope stored in the outbox payload.
func (e OutboxEvent) Envelope() (EventEnvelope, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventID:          e.EventID,
		EventType:        e.EventType,
		OccurredAt:       e.OccurredAt.UTC(),
		SourceService:    SourceService,
		TraceID:          e.EventID,
		SchemaVersion:    1,
		PartitionKeyPath: PartitionKeyPath,
		PartitionKey:     e.PartitionKey,
		Data:             data,
	}, nil
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
