package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
)

const (
	MinScore = 0.0
	MaxScore = 10.0
)

// ScoreSource names the step of the extraction chain that produced a score.
type ScoreSource string

const (
	ScoreFromJSON     ScoreSource = "json"
	ScoreFromLabel    ScoreSource = "label"
	ScoreFromNumber   ScoreSource = "number"
	ScoreFromFallback ScoreSource = "fallback"
)

var (
	labeledScorePattern = regexp.MustCompile(
		`(?i)(?:final\s+score|pontua[çc][ãa]o\s+final|puntuaci[óo]n\s+final|nota\s+final)[\s*_:=\-]*(-?\d+(?:[.,]\d+)?)`)
	bareNumberPattern = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)
)

// ExtractScore turns untrusted model output into a score in [0, 10]. It tries,
// in order: a JSON object with a numeric "score", a labeled "Final Score"
// line in any supported locale, and the first bare number. When all fail it
// returns 0 with ErrParseFallbackExhausted.
func ExtractScore(raw string) (float64, ScoreSource, error) {
	if v, ok := scoreFromJSON(raw); ok {
		return ClampScore(v), ScoreFromJSON, nil
	}

	if m := labeledScorePattern.FindStringSubmatch(raw); m != nil {
		if v, ok := parseDecimal(m[1]); ok {
			return ClampScore(v), ScoreFromLabel, nil
		}
	}

	if tok := bareNumberPattern.FindString(raw); tok != "" {
		if v, ok := parseDecimal(tok); ok {
			return ClampScore(v), ScoreFromNumber, nil
		}
	}

	return MinScore, ScoreFromFallback, apperr.ErrParseFallbackExhausted
}

func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return MinScore
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}

func scoreFromJSON(raw string) (float64, bool) {
	cleaned := extractJSON(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return 0, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return 0, false
	}

	v := coerceFloat(data["score"])
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// extractJSON strips markdown fences and surrounding prose from a JSON object.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, ok := parseDecimal(strings.TrimSpace(val))
		if !ok {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// parseDecimal accepts "." or "," as the decimal separator.
func parseDecimal(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
