package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSharedCard_Expiry(t *testing.T) {
	created := time.Unix(1700000000, 0).UTC()
	card := NewSharedCard("id1", CardPayload{Recipient: "Alex"}, created, 48*time.Hour)

	assert.True(t, card.ExpiresAt.After(card.CreatedAt))
	assert.False(t, card.ExpiredAt(created))
	assert.False(t, card.ExpiredAt(created.Add(48*time.Hour-time.Second)))

	// Expiry is inclusive at the boundary: live strictly before expires_at.
	assert.True(t, card.ExpiredAt(created.Add(48*time.Hour)))
	assert.True(t, card.ExpiredAt(created.Add(48*time.Hour+time.Second)))
}

func TestSharedCard_RemainingTTL(t *testing.T) {
	created := time.Unix(1700000000, 0).UTC()
	card := NewSharedCard("id1", CardPayload{}, created, 48*time.Hour)

	assert.Equal(t, 48*time.Hour, card.RemainingTTL(created))
	assert.Equal(t, time.Hour, card.RemainingTTL(created.Add(47*time.Hour)))
	assert.Equal(t, time.Duration(0), card.RemainingTTL(created.Add(49*time.Hour)))
}
