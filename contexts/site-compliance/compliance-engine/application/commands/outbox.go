package commands

import (
	"context"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
)

const (
	EventOffsetApplied          = "compliance.offset.applied"
	EventOffsetSuperseded       = "compliance.offset.superseded"
	EventEventApplied           = "compliance.event.applied"
	EventReallocationProposed   = "compliance.reallocation.proposed"
	EventReallocationCommitted  = "compliance.reallocation.committed"
	EventReallocationReversed   = "compliance.reallocation.reversed"
	EventCensusRefreshed        = "compliance.census.refreshed"
	EventSnapshotCaptured       = "compliance.snapshot.captured"
	municipalityLockKeyPrefix   = "municipality:"
	jurisdictionSnapshotLockKey = "jurisdiction:snapshot"
)

// LockKey scopes write locks per municipality.
func LockKey(municipalityID string) string {
	return municipalityLockKeyPrefix + municipalityID
}

func newOutboxEvent(
	ctx context.Context,
	ids ports.IDGenerator,
	eventType string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.OutboxEvent, error) {
	eventID, err := ids.NewID(ctx)
	if err != nil {
		return ports.OutboxEvent{}, err
	}
	return ports.OutboxEvent{
		EventID:      eventID,
		EventType:    eventType,
		PartitionKey: partitionKey,
		OccurredAt:   occurredAt.UTC(),
		Data:         data,
	}, nil
}

func nowFrom(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
