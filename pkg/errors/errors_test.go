package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := New(ErrCodeInvalidInput, "--jobs must be at least %d", 1)
	assert.Equal(t, "INVALID_INPUT: --jobs must be at least 1", err.Error())

	cause := errors.New("unexpected EOF")
	wrapped := Wrap(ErrCodeInvalidScene, cause, "decode %s", "desk.toml")
	assert.Equal(t, "INVALID_SCENE: decode desk.toml: unexpected EOF", wrapped.Error())
	assert.Same(t, cause, errors.Unwrap(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
}

func TestCodes(t *testing.T) {
	inner := New(ErrCodeFileNotFound, "scene missing")
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", New(ErrCodeInvalidFormat, "pdf"), ErrCodeInvalidFormat},
		{"fmt wrapped", fmt.Errorf("desk.toml: %w", inner), ErrCodeFileNotFound},
		{"outermost wins", Wrap(ErrCodeInvalidConfig, inner, "config"), ErrCodeInvalidConfig},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			if tt.code != "" {
				assert.True(t, Is(tt.err, tt.code))
			}
			assert.False(t, Is(tt.err, ErrCodeUnsupported))
		})
	}
	assert.False(t, Is(errors.New("boom"), ""), "an empty code never matches")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "scene missing", UserMessage(fmt.Errorf("x: %w", Wrap(ErrCodeFileNotFound, errors.New("enoent"), "scene missing"))))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidScene, "bad"), http.StatusBadRequest},
		{fmt.Errorf("render: %w", New(ErrCodeInvalidFormat, "pdf")), http.StatusBadRequest},
		{New(ErrCodeFileNotFound, "missing"), http.StatusNotFound},
		{New(ErrCodeUnsupported, "cost image"), http.StatusNotImplemented},
		{New(ErrCodeInvalidConfig, "addr"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{context.Canceled, ExitInterrupted},
		{fmt.Errorf("route: %w", context.Canceled), ExitInterrupted},
		{New(ErrCodeInvalidInput, "--jobs"), ExitUsage},
		{New(ErrCodeFileNotFound, "desk.toml"), ExitUsage},
		{New(ErrCodeInternal, "render"), ExitFailure},
		{errors.New("disk full"), ExitFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
