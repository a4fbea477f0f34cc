package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	domain "github.com/vitrinezap/api/internal/domain"
)

func TestPubSubOrderEventPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "order-events")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubOrderEventPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubOrderEventPublisher: %v", err)
	}

	seller := "vendor_7"
	occurredAt := time.Date(2026, 4, 2, 14, 30, 0, 0, time.UTC)
	event := domain.OrderEvent{
		Type:       domain.OrderEventStatusChanged,
		OrderID:    "ord_test",
		Number:     "VZ-2026-000042",
		Status:     domain.OrderStatusPreparation,
		SellerID:   &seller,
		OccurredAt: occurredAt,
	}

	if err := publisher.PublishOrderEvent(ctx, event); err != nil {
		t.Fatalf("PublishOrderEvent: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload orderEventMessage
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.OrderID != event.OrderID || payload.Number != event.Number {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if payload.Status != string(domain.OrderStatusPreparation) {
		t.Fatalf("unexpected status %q", payload.Status)
	}
	if payload.OccurredAt != occurredAt.Format(time.RFC3339Nano) {
		t.Fatalf("unexpected occurredAt %q", payload.OccurredAt)
	}
	if attr := messages[0].Attributes["type"]; attr != string(domain.OrderEventStatusChanged) {
		t.Fatalf("expected type attribute, got %q", attr)
	}
	if attr := messages[0].Attributes["sellerId"]; attr != seller {
		t.Fatalf("expected sellerId attribute, got %q", attr)
	}
}
