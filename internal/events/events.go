package events

import (
	"context"
	"encoding/json"
	"time"
)

// UserRegistered is the payload published after a successful registration.
type UserRegistered struct {
	UserID       int       `json:"user_id"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Backend delivers event payloads to a broker.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher serializes registration events onto a configured channel.
// A nil Publisher is valid and publishes nothing.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher over the given backend and channel.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// PublishUserRegistered sends a UserRegistered event.
func (p *Publisher) PublishUserRegistered(ctx context.Context, event UserRegistered) error {
	if p == nil || p.backend == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, p.channel, data, map[string]string{"event": "user.registered"})
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}
