package messaging

import (
	"context"
	"testing"
	"time"

	"agritrace/contexts/traceability/product-ledger/ports"
)

func TestKafkaDeliversToSubscriber(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.EventEnvelope, 1)
	err = bus.Subscribe(ctx, "trace.products", "test-cg", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sent := ports.EventEnvelope{
		EventID:       "event-1",
		EventType:     "trace.product.registered",
		SourceService: "agritrace",
		SchemaVersion: 1,
	}
	if err := bus.Publish(ctx, "trace.products", sent); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != sent.EventID || got.EventType != sent.EventType {
			t.Fatalf("unexpected event delivered: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber did not receive event")
	}
}

func TestKafkaPublishWithoutSubscribersSucceeds(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	if err := bus.Publish(context.Background(), "trace.products", ports.EventEnvelope{EventID: "event-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
