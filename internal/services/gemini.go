package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/Jgaps7/curriculos-saas/internal/config"
)

const (
	defaultGeminiModel      = "gemini-2.5-flash"
	defaultGeminiEmbedModel = "text-embedding-004"
	maxEmbedRunes           = 8000
)

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(cfg config.LLMConfig) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	svc := &geminiService{
		client:     client,
		modelName:  cfg.Model,
		embedModel: cfg.EmbedModel,
	}
	if svc.modelName == "" {
		svc.modelName = defaultGeminiModel
	}
	if svc.embedModel == "" {
		svc.embedModel = defaultGeminiEmbedModel
	}
	return svc, nil
}

func (g *geminiService) Name() string { return "gemini" }

// Chat maps system messages onto the system instruction and sends the rest
// as user content.
func (g *geminiService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	var system, user []string
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
		} else {
			user = append(user, m.Content)
		}
	}

	temperature := req.Temperature
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if len(system) > 0 {
		genCfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	model := req.Model
	if model == "" {
		model = g.modelName
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(strings.Join(user, "\n\n")), genCfg)
	if err != nil {
		return "", providerError("gemini.Chat", err)
	}
	if resp == nil {
		return "", providerError("gemini.Chat", fmt.Errorf("nil response"))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", providerError("gemini.Chat", fmt.Errorf("no text content in response"))
	}
	return text, nil
}

func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbedRunes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, providerError("gemini.Embed", err)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, providerError("gemini.Embed", fmt.Errorf("empty embedding result"))
	}
	return result.Embeddings[0].Values, nil
}
