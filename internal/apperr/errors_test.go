package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", E(KindInvalidArgument, "op", "bad", nil), http.StatusBadRequest},
		{"unauthorized", E(KindUnauthorized, "op", "no token", nil), http.StatusUnauthorized},
		{"forbidden", E(KindForbidden, "op", "no membership", nil), http.StatusForbidden},
		{"not found wrapped", fmt.Errorf("handler: %w", E(KindNotFound, "op", "job not found", nil)), http.StatusNotFound},
		{"conflict", E(KindConflict, "op", "stale", nil), http.StatusConflict},
		{"foreign", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestErrorFormattingAndUnwrap(t *testing.T) {
	inner := errors.New("timeout")
	err := E(KindProvider, "llm.Chat", "provider call failed", inner)

	assert.Equal(t, "llm.Chat: provider call failed: timeout", err.Error())
	assert.True(t, errors.Is(err, inner))
	assert.True(t, Is(err, KindProvider))
	assert.False(t, Is(err, KindExtraction))
	assert.Equal(t, "provider call failed", Message(err))
	assert.Equal(t, "internal server error", Message(inner))
}
