package repository

import (
	"context"
	"log/slog"

	"github.com/Proton-105/lanxat-bot/internal/domain"
	"github.com/Proton-105/lanxat-bot/internal/profilecache"
	"github.com/Proton-105/lanxat-bot/pkg/metrics"
)

// CachedProfileRepository serves reads from the profile cache and writes
// through to the wrapped repository, invalidating the cached entry.
// Cache failures degrade to the wrapped repository.
type CachedProfileRepository struct {
	next  ProfileRepository
	cache *profilecache.Cache
	log   *slog.Logger
}

var _ ProfileRepository = (*CachedProfileRepository)(nil)

func NewCachedProfileRepository(next ProfileRepository, cache *profilecache.Cache, log *slog.Logger) *CachedProfileRepository {
	if log == nil {
		log = slog.Default()
	}

	return &CachedProfileRepository{next: next, cache: cache, log: log}
}

func (r *CachedProfileRepository) FindByID(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	cached, err := r.cache.Get(ctx, userID)
	switch {
	case err != nil:
		metrics.RecordProfileCache("error")
		r.log.Warn("profile cache read failed", slog.Int64("user_id", userID), slog.Any("error", err))
	case cached != nil:
		metrics.RecordProfileCache("hit")
		return cached, nil
	default:
		metrics.RecordProfileCache("miss")
	}

	gen, genErr := r.cache.Generation(ctx, userID)
	if genErr != nil {
		r.log.Warn("profile cache generation read failed", slog.Int64("user_id", userID), slog.Any("error", genErr))
	}

	profile, err := r.next.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		written, err := r.cache.SetIfGeneration(ctx, profile, gen)
		switch {
		case err != nil:
			r.log.Warn("profile cache write failed", slog.Int64("user_id", userID), slog.Any("error", err))
		case !written:
			r.log.Debug("profile changed during read, not caching", slog.Int64("user_id", userID))
		}
	}

	return profile, nil
}

// FindFresh reads the wrapped repository without touching the cache.
func (r *CachedProfileRepository) FindFresh(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	return FindFresh(ctx, r.next, userID)
}

func (r *CachedProfileRepository) Save(ctx context.Context, profile *domain.UserProfile) error {
	if err := r.next.Save(ctx, profile); err != nil {
		return err
	}

	if profile != nil {
		if err := r.cache.Invalidate(ctx, profile.UserID); err != nil {
			r.log.Warn("profile cache invalidation failed", slog.Int64("user_id", profile.UserID), slog.Any("error", err))
		}
	}

	return nil
}
