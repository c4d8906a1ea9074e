package cards

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// TextGenerator produces greeting-card text from a prompt. Implementations
// are opaque external services; the facade only cares about success or
// failure and the text payload.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator produces an image reference (URL or data URI) from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// GeneratorConfig holds connection settings for one generation service.
type GeneratorConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max_retries"`
}

// Configured reports whether the service has credentials.
func (gc GeneratorConfig) Configured() bool {
	return gc.APIKey != ""
}

// ChatTextGenerator calls an OpenAI-style chat-completions endpoint.
type ChatTextGenerator struct {
	config GeneratorConfig
	client *http.Client
	logger *zap.Logger
}

// NewChatTextGenerator creates a text generator with a per-request timeout.
func NewChatTextGenerator(config GeneratorConfig, logger *zap.Logger) *ChatTextGenerator {
	return &ChatTextGenerator{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *ChatTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     g.config.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 200,
	})
	if err != nil {
		return "", &ServiceError{Service: "text-generation", Err: err}
	}

	var text string
	err = retry.Do(ctx, g.backoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			g.config.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

		resp, err := g.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("text service returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("text service returned status %d", resp.StatusCode)
		}

		var parsed chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("failed to decode text response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("text service returned no choices")
		}
		text = parsed.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		g.logger.Error("text generation failed", zap.Error(err))
		return "", &ServiceError{Service: "text-generation", Err: err}
	}
	return text, nil
}

func (g *ChatTextGenerator) backoff() retry.Backoff {
	return retry.WithMaxRetries(g.config.MaxRetries, retry.NewConstant(500*time.Millisecond))
}

// InferenceImageGenerator calls a hosted-inference image endpoint and
// returns the rendered image as a data URI, so the caller needs no second
// fetch to display it.
type InferenceImageGenerator struct {
	config GeneratorConfig
	client *http.Client
	logger *zap.Logger
}

// NewInferenceImageGenerator creates an image generator with a per-request
// timeout.
func NewInferenceImageGenerator(config GeneratorConfig, logger *zap.Logger) *InferenceImageGenerator {
	return &InferenceImageGenerator{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

func (g *InferenceImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return "", &ServiceError{Service: "image-generation", Err: err}
	}

	var imageRef string
	err = retry.Do(ctx, g.backoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			g.config.BaseURL+"/models/"+g.config.Model, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
		req.Header.Set("Accept", "image/png")

		resp, err := g.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		// Hosted inference returns 503 while the model loads.
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("image service returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("image service returned status %d", resp.StatusCode)
		}

		img, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read image response: %w", err)
		}
		imageRef = "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
		return nil
	})
	if err != nil {
		g.logger.Error("image generation failed", zap.Error(err))
		return "", &ServiceError{Service: "image-generation", Err: err}
	}
	return imageRef, nil
}

func (g *InferenceImageGenerator) backoff() retry.Backoff {
	return retry.WithMaxRetries(g.config.MaxRetries, retry.NewConstant(time.Second))
}
