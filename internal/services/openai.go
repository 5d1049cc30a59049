package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Jgaps7/curriculos-saas/internal/config"
)

const (
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultOpenAIEmbedModel = string(openai.SmallEmbedding3)
)

type openAIService struct {
	client     *openai.Client
	modelName  string
	embedModel string
}

func NewOpenAIService(cfg config.LLMConfig) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	svc := &openAIService{
		client:     openai.NewClientWithConfig(clientCfg),
		modelName:  cfg.Model,
		embedModel: cfg.EmbedModel,
	}
	if svc.modelName == "" {
		svc.modelName = defaultOpenAIModel
	}
	if svc.embedModel == "" {
		svc.embedModel = defaultOpenAIEmbedModel
	}
	return svc, nil
}

func (o *openAIService) Name() string { return "openai" }

func (o *openAIService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	model := req.Model
	if model == "" {
		model = o.modelName
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", providerError("openai.Chat", err)
	}
	if len(resp.Choices) == 0 {
		return "", providerError("openai.Chat", fmt.Errorf("no choices in response"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *openAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{truncateRunes(text, maxEmbedRunes)},
		Model: openai.EmbeddingModel(o.embedModel),
	})
	if err != nil {
		return nil, providerError("openai.Embed", err)
	}
	if len(resp.Data) == 0 {
		return nil, providerError("openai.Embed", fmt.Errorf("empty embedding result"))
	}
	return resp.Data[0].Embedding, nil
}
