package messaging

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	contractsv1 "sitecompliance/contracts/gen/events/v1"
)

func TestBusDeliversToEverySubscriber(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	for _, group := range []string{"audit", "dashboard"} {
		group := group
		if err := bus.Subscribe(ctx, "compliance.events", group, func(_ context.Context, event contractsv1.Envelope) error {
			got <- group + ":" + event.EventID
			return nil
		}); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	}

	if err := bus.Publish(ctx, "compliance.events", contractsv1.Envelope{EventID: "e1", EventType: "compliance.offset.applied"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := bus.Publish(ctx, "other.topic", contractsv1.Envelope{EventID: "e2"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case item := <-got:
			seen[item] = true
		case <-time.After(time.Second):
			t.Fatalf("timed out, seen %v", seen)
		}
	}
	if !seen["audit:e1"] || !seen["dashboard:e1"] {
		t.Fatalf("unexpected deliveries: %v", seen)
	}
	select {
	case item := <-got:
		t.Fatalf("unexpected delivery from another topic: %s", item)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBusHandlerErrorDoesNotStopConsumer(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 2)
	if err := bus.Subscribe(ctx, "t", "g", func(context.Context, contractsv1.Envelope) error {
		calls <- struct{}{}
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := bus.Publish(ctx, "t", contractsv1.Envelope{EventID: fmt.Sprint(i)}); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatalf("handler call %d never happened", i)
		}
	}
}

func TestBusDropsSubscriberOnCancel(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := bus.Subscribe(ctx, "t", "g", func(context.Context, contractsv1.Envelope) error { return nil }); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for {
		bus.mu.RLock()
		n := len(bus.subscribers["t"])
		bus.mu.RUnlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber still registered after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewNATSFailsWithoutServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	_, err = NewNATS(NATSConfig{URL: "nats://" + addr, ConnectTimeout: 200 * time.Millisecond}, nil)
	if err == nil {
		t.Fatal("expected connect error")
	}

	var closed *NATS
	if err := closed.Close(); err != nil {
		t.Fatalf("closing a nil publisher must be a no-op, got %v", err)
	}
}
