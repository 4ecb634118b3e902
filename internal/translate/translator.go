// Package translate talks to translation backends and turns user input into
// translation requests.
package translate

import (
	"context"

	"github.com/Proton-105/lanxat-bot/internal/domain"
)

// Request is a single translation.
type Request struct {
	Text string
	Lang domain.LangConfig
	// APIKey is the user's own backend credential. Backends with a server-side
	// key ignore it.
	APIKey string
}

// Result is a translated text and the direction actually used.
type Result struct {
	Text string
	Lang domain.LangConfig
}

// Translator is a translation backend.
type Translator interface {
	Name() string
	Translate(ctx context.Context, req Request) (*Result, error)
	// Detect returns the ISO 639-1 code of text, preferring hints.
	Detect(ctx context.Context, text string, hints []string, apiKey string) (string, error)
}
