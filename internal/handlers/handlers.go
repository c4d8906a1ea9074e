package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"greeting-cards/internal/cards"
	"greeting-cards/internal/sharestore"
	"greeting-cards/pkg/models"
)

// CardHandler handles HTTP card generation and share operations
type CardHandler struct {
	service         *cards.Service
	textConfigured  bool
	imageConfigured bool
	logger          *zap.Logger
}

// NewCardHandler creates a new handler
func NewCardHandler(service *cards.Service, textConfigured, imageConfigured bool, logger *zap.Logger) *CardHandler {
	return &CardHandler{
		service:         service,
		textConfigured:  textConfigured,
		imageConfigured: imageConfigured,
		logger:          logger,
	}
}

// GenerateCard handles POST /api/v1/cards/generate
func (h *CardHandler) GenerateCard(c *gin.Context) {
	var request cards.GenerateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	card, err := h.service.Generate(c.Request.Context(), request)
	if err != nil {
		h.respondError(c, err, "could not create card")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"generated_text": card.Text,
		"image_url":      card.ImageURL,
		"style":          card.Style,
	})
}

// GenerateText handles POST /api/v1/cards/generate-text
func (h *CardHandler) GenerateText(c *gin.Context) {
	var request cards.GenerateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	text, err := h.service.GenerateText(c.Request.Context(), request)
	if err != nil {
		h.respondError(c, err, "could not create card")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"generated_text": text,
	})
}

// GetStyles handles GET /api/v1/styles
func (h *CardHandler) GetStyles(c *gin.Context) {
	c.JSON(http.StatusOK, cards.Styles())
}

// GetStats handles GET /api/v1/stats
func (h *CardHandler) GetStats(c *gin.Context) {
	snapshot, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to read usage stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"counters": snapshot})
}

// CreateShare handles POST /share
func (h *CardHandler) CreateShare(c *gin.Context) {
	var request struct {
		Recipient     string `json:"recipient"`
		Occasion      string `json:"occasion"`
		Style         string `json:"style,omitempty"`
		Sender        string `json:"sender,omitempty"`
		Message       string `json:"message,omitempty"`
		GeneratedText string `json:"generated_text"`
		ImageURL      string `json:"image_url"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ref, err := h.service.CreateShare(c.Request.Context(), models.CardPayload{
		Recipient:     request.Recipient,
		Occasion:      request.Occasion,
		Style:         request.Style,
		Sender:        request.Sender,
		Message:       request.Message,
		GeneratedText: request.GeneratedText,
		ImageURL:      request.ImageURL,
	})
	if err != nil {
		h.respondError(c, err, "could not create card")
		return
	}

	h.logger.Debug("share created", zap.String("share_id", ref.ShareID))
	c.JSON(http.StatusOK, gin.H{
		"share_id":         ref.ShareID,
		"share_url":        ref.ShareURL,
		"expires_in_hours": ref.ExpiresInHours,
	})
}

// GetShare handles GET /share/:id
func (h *CardHandler) GetShare(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	card, err := h.service.ResolveShare(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "could not find card")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipient":      card.Payload.Recipient,
		"occasion":       card.Payload.Occasion,
		"style":          card.Payload.Style,
		"sender":         card.Payload.Sender,
		"message":        card.Payload.Message,
		"generated_text": card.Payload.GeneratedText,
		"image_url":      card.Payload.ImageURL,
		"created_at":     card.CreatedAt,
		"expires_at":     card.ExpiresAt,
	})
}

// Health handles GET /health
func (h *CardHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                 "healthy",
		"message":                "Greeting Card Generator API is running",
		"openai_configured":      h.textConfigured,
		"huggingface_configured": h.imageConfigured,
		"timestamp":              time.Now(),
	})
}

// respondError maps the error taxonomy to HTTP outcomes. Detail stays in
// the logs; callers get a generic message.
func (h *CardHandler) respondError(c *gin.Context, err error, generic string) {
	var valErr *cards.ValidationError
	var svcErr *cards.ServiceError

	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": valErr.Error(),
			"field": valErr.Field,
		})
	case errors.Is(err, sharestore.ErrNotFound):
		// Normal outcome, no log escalation.
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found or expired"})
	case errors.As(err, &svcErr):
		h.logger.Error("generation service failed", zap.Error(err), zap.String("service", svcErr.Service))
		c.JSON(http.StatusBadGateway, gin.H{"error": generic})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": generic})
	}
}
