package ports

import "context"

// EventPublisher publishes session and catalog events to other instances
type EventPublisher interface {
	PublishSessionEstablished(ctx context.Context, scheme, address string) error
	PublishSessionCleared(ctx context.Context, scheme, address string) error
	PublishCatalogChange(ctx context.Context, change CatalogChange) error
}

// CatalogChange describes a successful privileged mutation
type CatalogChange struct {
	Resource string `json:"resource"` // course, lesson or profile
	Action   string `json:"action"`   // created, updated or deleted
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	Scheme   string `json:"scheme"` // scheme of the owning wallet
}
