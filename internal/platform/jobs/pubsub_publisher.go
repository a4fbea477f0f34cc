package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"

	domain "github.com/vitrinezap/api/internal/domain"
)

// PubSubOrderEventPublisher publishes order lifecycle events to a Pub/Sub
// topic consumed by notification workers (WhatsApp pings, dashboards).
type PubSubOrderEventPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubOrderEventPublisher constructs a Pub/Sub backed order event publisher.
func NewPubSubOrderEventPublisher(topic *pubsub.Topic) (*PubSubOrderEventPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub order event publisher: topic is required")
	}
	return &PubSubOrderEventPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

type orderEventMessage struct {
	Type       string  `json:"type"`
	OrderID    string  `json:"orderId"`
	Number     string  `json:"number"`
	Status     string  `json:"status"`
	SellerID   *string `json:"sellerId,omitempty"`
	OccurredAt string  `json:"occurredAt"`
}

// PublishOrderEvent enqueues the event on the configured topic and waits for
// the server-assigned message ID.
func (p *PubSubOrderEventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub order event publisher: not initialised")
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	data, err := p.marshal(orderEventMessage{
		Type:       string(event.Type),
		OrderID:    strings.TrimSpace(event.OrderID),
		Number:     strings.TrimSpace(event.Number),
		Status:     string(event.Status),
		SellerID:   event.SellerID,
		OccurredAt: occurredAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "type", string(event.Type))
	setAttr(attrs, "orderId", event.OrderID)
	setAttr(attrs, "number", event.Number)
	setAttr(attrs, "status", string(event.Status))
	if event.SellerID != nil {
		setAttr(attrs, "sellerId", *event.SellerID)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
