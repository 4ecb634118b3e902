package repository

import (
	"context"

	"github.com/Proton-105/lanxat-bot/internal/domain"
)

// ProfileRepository stores user profiles keyed by Telegram user id.
type ProfileRepository interface {
	// FindByID returns *errors.ProfileNotExistsError when no profile is stored.
	FindByID(ctx context.Context, userID int64) (*domain.UserProfile, error)
	// Save inserts or replaces the profile.
	Save(ctx context.Context, profile *domain.UserProfile) error
}

// FreshFinder is implemented by repositories that can skip their cache.
type FreshFinder interface {
	FindFresh(ctx context.Context, userID int64) (*domain.UserProfile, error)
}

// FindFresh loads the profile from the backing store, bypassing any cache
// layer repo has. Use it for reads that feed a write.
func FindFresh(ctx context.Context, repo ProfileRepository, userID int64) (*domain.UserProfile, error) {
	if fresh, ok := repo.(FreshFinder); ok {
		return fresh.FindFresh(ctx, userID)
	}
	return repo.FindByID(ctx, userID)
}

// SearchRepository records translations performed for users.
type SearchRepository interface {
	Register(ctx context.Context, entry domain.SearchEntry) error
}
