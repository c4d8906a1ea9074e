package cards

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"greeting-cards/internal/sharestore"
	"greeting-cards/internal/stats"
	"greeting-cards/pkg/models"
)

// sweepEvery is the resolve-lookup cadence for the opportunistic sweep.
// Bounding staleness this way avoids a background scheduler.
const sweepEvery = 16

// GenerateRequest is the caller input for card generation.
type GenerateRequest struct {
	Recipient string `json:"recipient"`
	Occasion  string `json:"occasion"`
	Style     string `json:"style"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
}

// GeneratedCard is the output of a full generation: the text, the matching
// illustration, and the resolved style.
type GeneratedCard struct {
	Text     string `json:"generated_text"`
	ImageURL string `json:"image_url"`
	Style    Style  `json:"style"`
}

// ShareReference is the caller-facing result of sharing a card.
type ShareReference struct {
	ShareID        string `json:"share_id"`
	ShareURL       string `json:"share_url"`
	ExpiresInHours int    `json:"expires_in_hours"`
}

// Service is the card assembly facade: it turns a generation request into
// card text plus an illustration, and a share request into a stored record
// with a shareable reference.
type Service struct {
	store        sharestore.Store
	text         TextGenerator
	image        ImageGenerator
	stats        stats.Recorder
	shareBaseURL string
	logger       *zap.Logger

	resolves atomic.Uint64
}

// NewService wires the facade to its collaborators. shareBaseURL is the
// public prefix share links are built from, e.g. "https://cards.example.com".
func NewService(store sharestore.Store, text TextGenerator, image ImageGenerator,
	recorder stats.Recorder, shareBaseURL string, logger *zap.Logger) *Service {
	return &Service{
		store:        store,
		text:         text,
		image:        image,
		stats:        recorder,
		shareBaseURL: strings.TrimRight(shareBaseURL, "/"),
		logger:       logger,
	}
}

// Generate produces card text and a matching illustration. The attempt is
// counted in usage stats whether it succeeds or fails.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (card *GeneratedCard, err error) {
	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}
	style := StyleByID(req.Style)

	defer func() {
		s.stats.Record(ctx, req.Occasion, style.ID, err == nil)
	}()

	text, err := s.text.GenerateText(ctx, buildTextPrompt(req, style))
	if err != nil {
		return nil, err
	}

	// The generated text refines the image prompt so both halves of the
	// card tell the same story.
	imageURL, err := s.image.GenerateImage(ctx, buildImagePrompt(req, style, text))
	if err != nil {
		return nil, err
	}

	s.logger.Info("card generated",
		zap.String("occasion", req.Occasion),
		zap.String("style", style.ID))
	return &GeneratedCard{Text: text, ImageURL: imageURL, Style: style}, nil
}

// GenerateText produces card text only.
func (s *Service) GenerateText(ctx context.Context, req GenerateRequest) (text string, err error) {
	if err := validateGenerateRequest(req); err != nil {
		return "", err
	}
	style := StyleByID(req.Style)

	defer func() {
		s.stats.Record(ctx, req.Occasion, style.ID, err == nil)
	}()

	return s.text.GenerateText(ctx, buildTextPrompt(req, style))
}

// CreateShare persists a finished card and returns its share reference.
func (s *Service) CreateShare(ctx context.Context, payload models.CardPayload) (*ShareReference, error) {
	if err := validateSharePayload(payload); err != nil {
		return nil, err
	}

	card, err := s.store.Put(ctx, payload)
	if err != nil {
		return nil, err
	}

	return &ShareReference{
		ShareID:        card.ID,
		ShareURL:       s.shareBaseURL + "/share/" + card.ID,
		ExpiresInHours: int(card.ExpiresAt.Sub(card.CreatedAt).Hours()),
	}, nil
}

// ResolveShare looks up a shared card by id. Every sweepEvery-th call runs
// an eager sweep first so abandoned links cannot accumulate forever.
func (s *Service) ResolveShare(ctx context.Context, id string) (*models.SharedCard, error) {
	if s.resolves.Add(1)%sweepEvery == 0 {
		if _, err := s.store.Sweep(ctx); err != nil {
			s.logger.Warn("opportunistic sweep failed", zap.Error(err))
		}
	}
	return s.store.Get(ctx, id)
}

// Stats returns a snapshot of the usage counters.
func (s *Service) Stats(ctx context.Context) (map[string]stats.Counts, error) {
	return s.stats.Snapshot(ctx)
}

func validateGenerateRequest(req GenerateRequest) error {
	if strings.TrimSpace(req.Recipient) == "" {
		return &ValidationError{Field: "recipient"}
	}
	if strings.TrimSpace(req.Occasion) == "" {
		return &ValidationError{Field: "occasion"}
	}
	return nil
}

func validateSharePayload(payload models.CardPayload) error {
	switch {
	case strings.TrimSpace(payload.Recipient) == "":
		return &ValidationError{Field: "recipient"}
	case strings.TrimSpace(payload.Occasion) == "":
		return &ValidationError{Field: "occasion"}
	case strings.TrimSpace(payload.GeneratedText) == "":
		return &ValidationError{Field: "generated_text"}
	case strings.TrimSpace(payload.ImageURL) == "":
		return &ValidationError{Field: "image_url"}
	}
	return nil
}
