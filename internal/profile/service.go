// Package profile implements the business operations over user profiles.
package profile

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"strings"

	"github.com/Proton-105/lanxat-bot/internal/domain"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/internal/repository"
)

const fallbackLanguage = "en"

// Service provides business operations over user profiles.
type Service struct {
	repo   repository.ProfileRepository
	locker Locker
	log    *slog.Logger
}

// NewService constructs a Service. A nil locker falls back to in-process locking.
func NewService(repo repository.ProfileRepository, locker Locker, log *slog.Logger) *Service {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{repo: repo, locker: locker, log: log}
}

// Get returns the stored profile or *errors.ProfileNotExistsError.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		s.logError("get", userID, err)
		return nil, err
	}

	return profile, nil
}

// GetConfigured is Get that also requires the profile to be fully configured.
func (s *Service) GetConfigured(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !profile.IsConfigured() {
		return nil, errors.NewProfileNotConfiguredError(profile)
	}

	return profile, nil
}

// GetOrCreate returns the user's profile, creating one with default language
// pairs derived from languageCode on first contact.
func (s *Service) GetOrCreate(ctx context.Context, userID int64, languageCode string) (*domain.UserProfile, bool, error) {
	profile, err := s.repo.FindByID(ctx, userID)
	if err == nil {
		return profile, false, nil
	}

	var notExists *errors.ProfileNotExistsError
	if !stdErrors.As(err, &notExists) {
		s.logError("get_or_create.find", userID, err)
		return nil, false, err
	}

	created := false
	profile, err = s.Update(ctx, userID, func(p *domain.UserProfile, isNew bool) error {
		if !isNew {
			return nil
		}
		created = true
		applyDefaultLanguages(p, languageCode)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.log.Info("profile created", slog.Int64("user_id", userID))
	}

	return profile, created, nil
}

// Update runs read, mutate and save while holding the user's lock. The read
// skips the profile cache. mutate receives a copy of the stored profile, or a
// new empty profile with isNew set.
func (s *Service) Update(ctx context.Context, userID int64, mutate func(p *domain.UserProfile, isNew bool) error) (*domain.UserProfile, error) {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		s.logError("update.lock", userID, err)
		return nil, err
	}
	defer unlock()

	isNew := false
	current, err := repository.FindFresh(ctx, s.repo, userID)
	if err != nil {
		var notExists *errors.ProfileNotExistsError
		if !stdErrors.As(err, &notExists) {
			s.logError("update.find", userID, err)
			return nil, err
		}
		current = domain.NewUserProfile(userID)
		isNew = true
	}

	updated := current.Clone()
	if err := mutate(updated, isNew); err != nil {
		return nil, err
	}
	updated.UserID = userID

	if !isNew && updated.Equal(current) {
		return updated, nil
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		s.logError("update.save", userID, err)
		return nil, err
	}

	return updated, nil
}

// SetAPIKey stores the user's translation API key.
func (s *Service) SetAPIKey(ctx context.Context, userID int64, apiKey string) (*domain.UserProfile, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" || strings.ContainsAny(apiKey, " \t\n") {
		return nil, errors.NewValidationError("Usage: /yandexkey YOUR_API_KEY")
	}

	return s.Update(ctx, userID, func(p *domain.UserProfile, _ bool) error {
		p.YandexAPIKey = apiKey
		return nil
	})
}

// SetLangConfig replaces the named language pair ("inline" or "other").
func (s *Service) SetLangConfig(ctx context.Context, userID int64, name, from, to string) (*domain.UserProfile, error) {
	cfg := domain.LangConfig{
		From: strings.ToLower(strings.TrimSpace(from)),
		To:   strings.ToLower(strings.TrimSpace(to)),
	}

	if _, ok := domain.NewUserProfile(userID).LangConfig(name); !ok {
		return nil, errors.NewLangConfigNotExistsError(name)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	return s.Update(ctx, userID, func(p *domain.UserProfile, _ bool) error {
		p.SetLangConfig(name, cfg)
		return nil
	})
}

// SwapLangConfig reverses the named language pair.
func (s *Service) SwapLangConfig(ctx context.Context, userID int64, name string) (*domain.UserProfile, error) {
	return s.Update(ctx, userID, func(p *domain.UserProfile, _ bool) error {
		cfg, ok := p.LangConfig(name)
		if !ok {
			return errors.NewLangConfigNotExistsError(name)
		}
		p.SetLangConfig(name, cfg.Reversed())
		return nil
	})
}

// LangConfig returns the named language pair of a stored profile.
func (s *Service) LangConfig(ctx context.Context, userID int64, name string) (domain.LangConfig, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return domain.LangConfig{}, err
	}

	cfg, ok := profile.LangConfig(name)
	if !ok {
		return domain.LangConfig{}, errors.NewLangConfigNotExistsError(name)
	}

	return cfg, nil
}

// applyDefaultLanguages pairs the user's own language with English, or with
// Spanish for English speakers.
func applyDefaultLanguages(p *domain.UserProfile, languageCode string) {
	native := strings.ToLower(languageCode)
	if len(native) > 2 {
		native = native[:2]
	}
	if (domain.LangConfig{From: native, To: native}).Validate() != nil {
		native = fallbackLanguage
	}

	foreign := fallbackLanguage
	if native == fallbackLanguage {
		foreign = "es"
	}

	p.SetLangConfig(domain.LangConfigInline, domain.LangConfig{From: native, To: foreign})
	p.SetLangConfig(domain.LangConfigOther, domain.LangConfig{From: foreign, To: native})
}

func (s *Service) logError(operation string, userID int64, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	// missing or incomplete profiles are expected on every first contact
	if errors.IsDomain(err) && !errors.IsRetryable(err) {
		s.log.Debug("profile service operation rejected",
			slog.String("operation", operation),
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
		return
	}

	s.log.Error("profile service operation failed",
		slog.String("operation", operation),
		slog.Int64("user_id", userID),
		slog.Any("error", err),
	)
}
