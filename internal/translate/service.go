package translate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Proton-105/lanxat-bot/internal/domain"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/internal/repository"
)

// Service translates on behalf of a configured profile and records every
// successful translation.
type Service struct {
	translator Translator
	searches   repository.SearchRepository
	log        *slog.Logger
}

// NewService builds a Service. searches may be nil.
func NewService(translator Translator, searches repository.SearchRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{translator: translator, searches: searches, log: log}
}

func (s *Service) Backend() string {
	return s.translator.Name()
}

// TranslateQuery translates a finished inline query with the query's own pair
// or the profile's inline pair.
func (s *Service) TranslateQuery(ctx context.Context, profile *domain.UserProfile, q Query) (*Result, error) {
	inline, _ := profile.LangConfig(domain.LangConfigInline)
	return s.translate(ctx, profile, q.Text, q.LangOr(inline))
}

// TranslateMessage translates someone else's text with the profile's other
// pair. Text already written in the target language goes the opposite way.
func (s *Service) TranslateMessage(ctx context.Context, profile *domain.UserProfile, text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewValidationError("Nothing to translate")
	}

	other, _ := profile.LangConfig(domain.LangConfigOther)

	detected, err := s.translator.Detect(ctx, text, other.Hints(), profile.YandexAPIKey)
	if err != nil {
		return nil, err
	}

	lang := domain.LangConfig{From: detected, To: domain.DecideLangTo(detected, other)}
	if lang.From == lang.To {
		lang = other
	}

	return s.translate(ctx, profile, text, lang)
}

func (s *Service) translate(ctx context.Context, profile *domain.UserProfile, text string, lang domain.LangConfig) (*Result, error) {
	result, err := s.translator.Translate(ctx, Request{Text: text, Lang: lang, APIKey: profile.YandexAPIKey})
	if err != nil {
		return nil, err
	}

	s.register(ctx, profile.UserID, text, result)
	return result, nil
}

func (s *Service) register(ctx context.Context, userID int64, source string, result *Result) {
	if s.searches == nil {
		return
	}

	entry := domain.SearchEntry{
		UserID: userID,
		Source: source,
		Target: result.Text,
		From:   result.Lang.From,
		To:     result.Lang.To,
	}

	if err := s.searches.Register(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "failed to register search",
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}
}
