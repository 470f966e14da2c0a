package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/tutorauth/ports"
)

const (
	SessionTopic = "tutorauth.session"
	CatalogTopic = "tutorauth.catalog"
)

// SessionEvent is published when a server establishes or clears a session cookie
type SessionEvent struct {
	Type       string    `json:"type"`
	Scheme     string    `json:"scheme"`
	Address    string    `json:"address"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CatalogEvent is published after a privileged catalog mutation
type CatalogEvent struct {
	ports.CatalogChange
	OccurredAt time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishSessionEstablished publishes a session.established event
func (p *WatermillPublisher) PublishSessionEstablished(ctx context.Context, scheme, address string) error {
	return p.publish(ctx, SessionTopic, SessionEvent{
		Type:       "session.established",
		Scheme:     scheme,
		Address:    address,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishSessionCleared publishes a session.cleared event
func (p *WatermillPublisher) PublishSessionCleared(ctx context.Context, scheme, address string) error {
	return p.publish(ctx, SessionTopic, SessionEvent{
		Type:       "session.cleared",
		Scheme:     scheme,
		Address:    address,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishCatalogChange publishes a catalog mutation event
func (p *WatermillPublisher) PublishCatalogChange(ctx context.Context, change ports.CatalogChange) error {
	return p.publish(ctx, CatalogTopic, CatalogEvent{
		CatalogChange: change,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
