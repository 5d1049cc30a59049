package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

// ScoringEngine runs the three model calls of stage two.
type ScoringEngine interface {
	Summarize(ctx context.Context, resumeText string) (string, error)
	Critique(ctx context.Context, resumeText string, job *models.Job) (string, error)
	Score(ctx context.Context, resumeText string, job *models.Job) (float64, error)
}

type ScoringOptions struct {
	Model          string
	Temperature    float32
	MaxTokens      int
	ScoreMaxTokens int
	Timeout        time.Duration
}

type scoringEngine struct {
	llm           LLMProvider
	promptBuilder *PromptBuilder
	opts          ScoringOptions
	log           *logrus.Logger
}

func NewScoringEngine(llm LLMProvider, opts ScoringOptions, log *logrus.Logger) ScoringEngine {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	if opts.ScoreMaxTokens <= 0 {
		opts.ScoreMaxTokens = 120
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &scoringEngine{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		opts:          opts,
		log:           log,
	}
}

func (s *scoringEngine) Summarize(ctx context.Context, resumeText string) (string, error) {
	return s.chat(ctx, "summarize", summarySystemPrompt, s.promptBuilder.BuildSummaryPrompt(resumeText), s.opts.MaxTokens)
}

func (s *scoringEngine) Critique(ctx context.Context, resumeText string, job *models.Job) (string, error) {
	return s.chat(ctx, "critique", critiqueSystemPrompt, s.promptBuilder.BuildCritiquePrompt(resumeText, job), s.opts.MaxTokens)
}

// Score never returns a value outside [0, 10]. Unparseable output degrades to
// 0 with a warning; provider failures are returned as errors.
func (s *scoringEngine) Score(ctx context.Context, resumeText string, job *models.Job) (float64, error) {
	raw, err := s.chat(ctx, "score", scoreSystemPrompt, s.promptBuilder.BuildScorePrompt(resumeText, job), s.opts.ScoreMaxTokens)
	if err != nil {
		return 0, err
	}

	score, source, err := ExtractScore(raw)
	entry := s.log.WithFields(logrus.Fields{
		"job_id":       job.ID,
		"score":        score,
		"score_source": source,
	})
	if errors.Is(err, apperr.ErrParseFallbackExhausted) {
		entry.WithField("response_preview", truncateRunes(raw, 200)).Warn("⚠️  Could not parse a score from model output, defaulting to 0")
		return MinScore, nil
	}

	entry.Debug("📊 Score extracted")
	return score, nil
}

func (s *scoringEngine) chat(ctx context.Context, call, system, prompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := s.llm.Chat(ctx, ChatRequest{
		Model: s.opts.Model,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: prompt},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   maxTokens,
	})

	entry := s.log.WithFields(logrus.Fields{
		"call":          call,
		"provider":      s.llm.Name(),
		"prompt_length": utf8.RuneCountInString(prompt),
		"latency_ms":    time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("❌ LLM call failed")
		return "", providerError("scoring."+call, err)
	}

	entry.WithField("response_length", utf8.RuneCountInString(out)).Debug("✅ LLM response received")
	return strings.TrimSpace(out), nil
}
