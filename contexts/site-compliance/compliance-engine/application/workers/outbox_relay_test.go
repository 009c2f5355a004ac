package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"sitecompliance/contexts/site-compliance/compliance-engine/adapters/memory"
	"sitecompliance/contexts/site-compliance/compliance-engine/domain/entities"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
	contractsv1 "sitecompliance/contracts/gen/events/v1"
	"sitecompliance/internal/platform/messaging"
)

type flakyPublisher struct {
	failAfter int
	published []contractsv1.Envelope
}

func (p *flakyPublisher) Publish(_ context.Context, _ string, event contractsv1.Envelope) error {
	if len(p.published) >= p.failAfter {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func stageEvents(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	ctx := context.Background()
	if err := store.UpsertMunicipality(ctx, entities.Municipality{MunicipalityID: "alder", Name: "Alder Bay", Population: 20000}); err != nil {
		t.Fatalf("seed municipality failed: %v", err)
	}
	base := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		record := entities.EventRecord{EventID: "ev-" + id, MunicipalityID: "alder", Credit: 1, ValidFrom: base, ValidTo: base, CreatedAt: base}
		event := ports.OutboxEvent{
			EventID:      "out-" + id,
			EventType:    "compliance.event.applied",
			PartitionKey: "alder",
			OccurredAt:   base.Add(time.Duration(i) * time.Second),
			Data:         map[string]any{"event_id": record.EventID},
		}
		if err := store.AppendEvent(ctx, record, event); err != nil {
			t.Fatalf("append event failed: %v", err)
		}
	}
}

func TestRelayPublishesThroughBus(t *testing.T) {
	store := memory.NewStore()
	stageEvents(t, store, 2)

	bus := messaging.NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	received := make(chan contractsv1.Envelope, 2)
	if err := bus.Subscribe(ctx, "compliance.test", "relay-test", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	relay := OutboxRelay{Outbox: store, Publisher: bus, Clock: store, Topic: "compliance.test"}
	sent, err := relay.RunOnce(ctx)
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 events relayed, got %d", sent)
	}

	for _, want := range []string{"out-a", "out-b"} {
		select {
		case event := <-received:
			if event.EventID != want || event.PartitionKey != "alder" || event.SchemaVersion != 1 {
				t.Fatalf("unexpected envelope: %+v", event)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	sent, err = relay.RunOnce(ctx)
	if err != nil || sent != 0 {
		t.Fatalf("expected nothing left to relay, got sent=%d err=%v", sent, err)
	}
}

func TestRelayStopsAtFirstFailure(t *testing.T) {
	store := memory.NewStore()
	stageEvents(t, store, 3)

	publisher := &flakyPublisher{failAfter: 1}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	sent, err := relay.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected publish failure")
	}
	if sent != 1 {
		t.Fatalf("expected one event relayed before the failure, got %d", sent)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 2 || pending[0].OutboxID != "out-b" {
		t.Fatalf("expected out-b to stay first in line, got %+v", pending)
	}

	publisher.failAfter = 10
	sent, err = relay.RunOnce(context.Background())
	if err != nil || sent != 2 {
		t.Fatalf("expected the retry to drain the outbox, got sent=%d err=%v", sent, err)
	}
	if publisher.published[1].EventID != "out-b" || publisher.published[2].EventID != "out-c" {
		t.Fatalf("relay reordered events: %+v", publisher.published)
	}
}

func TestRelayRejectsCorruptPayload(t *testing.T) {
	outbox := &staticOutbox{messages: []ports.OutboxMessage{{OutboxID: "bad", Payload: []byte("{")}}}
	relay := OutboxRelay{Outbox: outbox, Publisher: &flakyPublisher{failAfter: 10}}
	if _, err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
	if len(outbox.sent) != 0 {
		t.Fatalf("corrupt rows must stay pending, got %v", outbox.sent)
	}
}

type staticOutbox struct {
	messages []ports.OutboxMessage
	sent     []string
}

func (o *staticOutbox) ListPendingOutbox(context.Context, int) ([]ports.OutboxMessage, error) {
	return o.messages, nil
}

func (o *staticOutbox) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	o.sent = append(o.sent, outboxID)
	return nil
}
