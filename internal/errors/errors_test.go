package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/domain"
)

func TestLangConfigNotExistsError_MessageContainsName(t *testing.T) {
	err := NewLangConfigNotExistsError("xx")

	assert.Contains(t, err.Error(), "xx")
	assert.Equal(t, "xx", err.Config)
	assert.Equal(t, CodeLangConfigNotExists, err.Code)
}

func TestProfileNotExistsError_CarriesUserID(t *testing.T) {
	for _, userID := range []int64{0, 1, 143015357, 1 << 40} {
		err := NewProfileNotExistsError(userID)

		var target *ProfileNotExistsError
		require.True(t, stdErrors.As(err, &target))
		assert.Equal(t, userID, target.UserID)
		assert.Contains(t, err.Error(), fmt.Sprint(userID))
	}
}

func TestProfileNotConfiguredError_KeepsProfilePointer(t *testing.T) {
	profile := &domain.UserProfile{UserID: 7, LangFrom: "en"}
	err := NewProfileNotConfiguredError(profile)

	assert.Same(t, profile, err.Profile)
	assert.Contains(t, err.UserMessage, "yandexApiKey")
	assert.Contains(t, err.Error(), "7")
}

func TestInlineQueryError_KeepsQueryPointer(t *testing.T) {
	query := &telebot.Query{ID: "q1", Text: "hola ."}
	cause := NewTranslationError("Yandex", "Unexpected bad response from Yandex API", 503, nil)

	err := NewInlineQueryError(query, cause.Message, cause)

	assert.Same(t, query, err.Query)
	assert.True(t, stdErrors.Is(err, cause))
	assert.Equal(t, SeverityMedium, err.Severity)
	assert.True(t, err.Retryable)
}

func TestIsDomain(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "base", err: New("boom"), want: true},
		{name: "lang config", err: NewLangConfigNotExistsError("x"), want: true},
		{name: "not configured", err: NewProfileNotConfiguredError(nil), want: true},
		{name: "not exists", err: NewProfileNotExistsError(1), want: true},
		{name: "inline", err: NewInlineQueryError(nil, "m", nil), want: true},
		{name: "translation", err: NewTranslationError("Yandex", "m", 400, nil), want: true},
		{name: "wrapped", err: fmt.Errorf("ctx: %w", NewProfileNotExistsError(1)), want: true},
		{name: "plain", err: stdErrors.New("bug"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDomain(tc.err))
		})
	}
}

func TestAsDomain_ReturnsVariantBase(t *testing.T) {
	err := fmt.Errorf("load: %w", NewProfileNotExistsError(5))

	base, ok := AsDomain(err)
	require.True(t, ok)
	assert.Equal(t, CodeProfileNotExists, base.Code)
}

func TestTranslationError_Retryable(t *testing.T) {
	assert.False(t, NewTranslationError("Yandex", "m", 401, nil).Retryable)
	assert.True(t, NewTranslationError("Yandex", "m", 429, nil).Retryable)
	assert.True(t, NewTranslationError("Yandex", "m", 502, nil).Retryable)
	assert.True(t, NewTranslationError("Yandex", "m", 0, stdErrors.New("dial tcp")).Retryable)
	assert.False(t, NewTranslationError("Gemini", "m", 400, stdErrors.New("bad request")).Retryable)
}

func TestWrap_Unwraps(t *testing.T) {
	cause := stdErrors.New("io")
	err := Wrap("failed", cause)

	assert.True(t, stdErrors.Is(err, cause))
	assert.Equal(t, cause, err.Cause())
}
