// Package handlers implements the bot's commands, callbacks, inline queries
// and message translation.
package handlers

import (
	"context"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/domain"
	"github.com/Proton-105/lanxat-bot/internal/i18n"
	"github.com/Proton-105/lanxat-bot/internal/translate"
)

// Handler processes one update.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Keys of values stored on telebot.Context.
const (
	ContextKey        = "lanxat.ctx"
	ArgsKey           = "lanxat.args"
	ProfileKey        = "lanxat.profile"
	ProfileCreatedKey = "lanxat.profile_created"
)

// ProfileService is the part of profile.Service the handlers use.
type ProfileService interface {
	GetConfigured(ctx context.Context, userID int64) (*domain.UserProfile, error)
	GetOrCreate(ctx context.Context, userID int64, languageCode string) (*domain.UserProfile, bool, error)
	SetAPIKey(ctx context.Context, userID int64, apiKey string) (*domain.UserProfile, error)
	SetLangConfig(ctx context.Context, userID int64, name, from, to string) (*domain.UserProfile, error)
	SwapLangConfig(ctx context.Context, userID int64, name string) (*domain.UserProfile, error)
}

// TranslationService is the part of translate.Service the handlers use.
type TranslationService interface {
	TranslateQuery(ctx context.Context, profile *domain.UserProfile, q translate.Query) (*translate.Result, error)
	TranslateMessage(ctx context.Context, profile *domain.UserProfile, text string) (*translate.Result, error)
}

// Deps are shared by every handler.
type Deps struct {
	Profiles     ProfileService
	Translations TranslationService
	Catalog      *i18n.Manager
	// BotName is the bot's username, shown in usage texts.
	BotName string
	// InlineTimeout caps translation of an inline query. Zero means DefaultInlineTimeout.
	InlineTimeout time.Duration
}

// DefaultInlineTimeout leaves time to answer before Telegram drops the query.
const DefaultInlineTimeout = 5 * time.Second

func (d Deps) inlineTimeout() time.Duration {
	if d.InlineTimeout > 0 {
		return d.InlineTimeout
	}
	return DefaultInlineTimeout
}

// RequestContext returns the update's context set by the logging middleware.
func RequestContext(c telebot.Context) context.Context {
	if ctx, ok := c.Get(ContextKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}

// CommandArgs returns the text after the command, set by the router.
func CommandArgs(c telebot.Context) string {
	args, _ := c.Get(ArgsKey).(string)
	return args
}

func (d Deps) translator(c telebot.Context) i18n.Translator {
	code := ""
	if sender := c.Sender(); sender != nil {
		code = sender.LanguageCode
	}
	return d.Catalog.Translator(code)
}

// profile returns the profile loaded by the profile middleware, loading or
// creating it when the middleware did not run.
func (d Deps) profile(c telebot.Context) (*domain.UserProfile, bool, error) {
	if p, ok := c.Get(ProfileKey).(*domain.UserProfile); ok && p != nil {
		created, _ := c.Get(ProfileCreatedKey).(bool)
		return p, created, nil
	}

	sender := c.Sender()
	return d.Profiles.GetOrCreate(RequestContext(c), sender.ID, sender.LanguageCode)
}
