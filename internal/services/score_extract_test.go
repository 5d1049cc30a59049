package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
)

func TestExtractScore(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		want   float64
		source ScoreSource
	}{
		{"json", `{"score": 7.5, "reason": "solid"}`, 7.5, ScoreFromJSON},
		{"json in fence", "```json\n{\"score\": \"6,25\"}\n```", 6.25, ScoreFromJSON},
		{"json with prose", `Here you go: {"score": 9} hope it helps`, 9, ScoreFromJSON},
		{"json without score falls through", `{"grade": 4}`, 4, ScoreFromNumber},
		{"portuguese label comma", "Pontuação Final: 9,2", 9.2, ScoreFromLabel},
		{"english label", "Criterion A: 6\nFinal Score: 8.4", 8.4, ScoreFromLabel},
		{"bold label", "**Final Score:** 7", 7, ScoreFromLabel},
		{"spanish label", "puntuacion final = 5.5", 5.5, ScoreFromLabel},
		{"first bare number", "I would give this candidate 6.8 out of 10", 6.8, ScoreFromNumber},
		{"over range clamps", "Final Score: 87", 10, ScoreFromLabel},
		{"negative clamps", "score is -3", 0, ScoreFromNumber},
		{"json over range", `{"score": 150}`, 10, ScoreFromJSON},
		{"no numbers", "no numbers here", 0, ScoreFromFallback},
		{"empty", "", 0, ScoreFromFallback},
		{"malformed json", `{"score": }`, 0, ScoreFromFallback},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, source, err := ExtractScore(tc.raw)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.Equal(t, tc.source, source)
			if tc.source == ScoreFromFallback {
				assert.ErrorIs(t, err, apperr.ErrParseFallbackExhausted)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExtractScoreAlwaysInRange(t *testing.T) {
	inputs := []string{
		"", "   ", "{", "}", "{}", `{"score": null}`, `{"score": "NaN"}`, `{"score": 1e400}`,
		"-100", "100", "999999999999999999999999", "Pontuação Final: -0,5", "Final Score: 10.0001",
		"1,2,3", "..", "-", "--5", "score: ∞", "nota final 11", "The result is 4/10 overall",
	}

	for _, raw := range inputs {
		got, _, _ := ExtractScore(raw)
		assert.False(t, math.IsNaN(got), raw)
		assert.GreaterOrEqual(t, got, MinScore, raw)
		assert.LessOrEqual(t, got, MaxScore, raw)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(math.NaN()))
	assert.Equal(t, 0.0, ClampScore(math.Inf(-1)))
	assert.Equal(t, 10.0, ClampScore(math.Inf(1)))
	assert.Equal(t, 3.3, ClampScore(3.3))
}
