package models

import (
	"time"
)

// CardPayload holds the caller-supplied card fields. The share store treats
// it as opaque data and never interprets it beyond passing it through.
type CardPayload struct {
	Recipient     string `json:"recipient"`
	Occasion      string `json:"occasion"`
	Style         string `json:"style,omitempty"`
	Sender        string `json:"sender,omitempty"`
	Message       string `json:"message,omitempty"`
	GeneratedText string `json:"generated_text"`
	ImageURL      string `json:"image_url"`
}

// SharedCard is a card persisted under a share id.
type SharedCard struct {
	ID        string      `json:"id"`
	Payload   CardPayload `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// NewSharedCard creates a record expiring ttl after now.
func NewSharedCard(id string, payload CardPayload, now time.Time, ttl time.Duration) *SharedCard {
	return &SharedCard{
		ID:        id,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// ExpiredAt reports whether the record is expired relative to now.
// A record is live strictly before its expiry instant.
func (sc *SharedCard) ExpiredAt(now time.Time) bool {
	return !now.Before(sc.ExpiresAt)
}

// RemainingTTL returns the time left until expiration relative to now.
func (sc *SharedCard) RemainingTTL(now time.Time) time.Duration {
	if sc.ExpiredAt(now) {
		return 0
	}
	return sc.ExpiresAt.Sub(now)
}
