package services

import (
	"context"
	"fmt"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/config"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type ChatMessage struct {
	Role    string
	Content string
}

type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float32
	MaxTokens   int
}

// LLMProvider sends one chat exchange and returns the model's text. Every
// failure is returned as an apperr.KindProvider error.
type LLMProvider interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Name() string
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LLMClient is what the concrete providers implement.
type LLMClient interface {
	LLMProvider
	Embedder
}

func NewLLMClient(cfg config.LLMConfig) (LLMClient, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiService(cfg)
	case "openai", "":
		return NewOpenAIService(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

func providerError(op string, err error) error {
	if apperr.Is(err, apperr.KindProvider) {
		return err
	}
	return apperr.E(apperr.KindProvider, op, "language model call failed", err)
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
