package profile

import (
	"context"
	stdErrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lanxat-bot/internal/domain"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/internal/profilecache"
	"github.com/Proton-105/lanxat-bot/internal/repository"
	"github.com/Proton-105/lanxat-bot/internal/testutil"
)

// memoryRepository stores copies, like a real database would.
type memoryRepository struct {
	mu       sync.Mutex
	profiles map[int64]*domain.UserProfile
	saves    int
}

func newMemoryRepository(profiles ...*domain.UserProfile) *memoryRepository {
	repo := &memoryRepository{profiles: make(map[int64]*domain.UserProfile)}
	for _, p := range profiles {
		repo.profiles[p.UserID] = p.Clone()
	}
	return repo
}

func (r *memoryRepository) FindByID(_ context.Context, userID int64) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, errors.NewProfileNotExistsError(userID)
	}
	return p.Clone(), nil
}

func (r *memoryRepository) Save(_ context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saves++
	r.profiles[profile.UserID] = profile.Clone()
	return nil
}

// sameInstanceRepository hands out the stored pointer itself.
type sameInstanceRepository struct {
	profile *domain.UserProfile
}

func (r *sameInstanceRepository) FindByID(context.Context, int64) (*domain.UserProfile, error) {
	return r.profile, nil
}

func (r *sameInstanceRepository) Save(context.Context, *domain.UserProfile) error {
	return nil
}

func example42() *domain.UserProfile {
	return &domain.UserProfile{UserID: 42, LangFrom: "en", LangTo: "es", LangOtherFrom: "es", LangOtherTo: "en", YandexAPIKey: "k1"}
}

func TestService_Get_NotExistsCarriesUserID(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil, testutil.Logger())

	for _, userID := range []int64{1, 42, 1065512701} {
		_, err := svc.Get(context.Background(), userID)

		var notExists *errors.ProfileNotExistsError
		require.True(t, stdErrors.As(err, &notExists))
		assert.Equal(t, userID, notExists.UserID)
	}
}

func TestService_GetConfigured(t *testing.T) {
	ctx := context.Background()

	stored := &domain.UserProfile{UserID: 7, LangFrom: "en", LangTo: "ru"}
	svc := NewService(&sameInstanceRepository{profile: stored}, nil, testutil.Logger())

	_, err := svc.GetConfigured(ctx, 7)

	var notConfigured *errors.ProfileNotConfiguredError
	require.True(t, stdErrors.As(err, &notConfigured))
	assert.Same(t, stored, notConfigured.Profile)

	svc = NewService(newMemoryRepository(example42()), nil, testutil.Logger())
	profile, err := svc.GetConfigured(ctx, 42)
	require.NoError(t, err)
	assert.True(t, example42().Equal(profile))

	_, err = svc.GetConfigured(ctx, 43)
	var notExists *errors.ProfileNotExistsError
	assert.True(t, stdErrors.As(err, &notExists))
}

func TestService_UpdateChangesOnlyOneField(t *testing.T) {
	repo := newMemoryRepository(example42())
	svc := NewService(repo, nil, testutil.Logger())

	updated, err := svc.Update(context.Background(), 42, func(p *domain.UserProfile, isNew bool) error {
		assert.False(t, isNew)
		p.LangFrom = "fr"
		return nil
	})
	require.NoError(t, err)

	expected := &domain.UserProfile{UserID: 42, LangFrom: "fr", LangTo: "es", LangOtherFrom: "es", LangOtherTo: "en", YandexAPIKey: "k1"}
	assert.True(t, expected.Equal(updated))

	stored, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, expected.Equal(stored))
}

func TestService_UpdateSkipsSaveWhenUnchanged(t *testing.T) {
	repo := newMemoryRepository(example42())
	svc := NewService(repo, nil, testutil.Logger())

	_, err := svc.Update(context.Background(), 42, func(*domain.UserProfile, bool) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 0, repo.saves)
}

func TestService_UpdateMutationError(t *testing.T) {
	repo := newMemoryRepository(example42())
	svc := NewService(repo, nil, testutil.Logger())
	boom := stdErrors.New("boom")

	_, err := svc.Update(context.Background(), 42, func(p *domain.UserProfile, _ bool) error {
		p.LangTo = "zz"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, _ := repo.FindByID(context.Background(), 42)
	assert.Equal(t, "es", stored.LangTo)
}

func TestService_ConcurrentUpdatesAreSerialized(t *testing.T) {
	repo := newMemoryRepository(&domain.UserProfile{UserID: 1})
	svc := NewService(repo, nil, testutil.Logger())

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Update(context.Background(), 1, func(p *domain.UserProfile, _ bool) error {
				p.YandexAPIKey += "x"
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", writers), stored.YandexAPIKey)
}

// pausingRepository blocks its first FindByID after taking the snapshot.
type pausingRepository struct {
	*memoryRepository
	first   atomic.Bool
	paused  chan struct{}
	release chan struct{}
}

func (r *pausingRepository) FindByID(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	profile, err := r.memoryRepository.FindByID(ctx, userID)
	if r.first.CompareAndSwap(false, true) {
		close(r.paused)
		<-r.release
	}
	return profile, err
}

func TestService_SlowCachedReadDoesNotLoseUpdates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &pausingRepository{
		memoryRepository: newMemoryRepository(example42()),
		paused:           make(chan struct{}),
		release:          make(chan struct{}),
	}
	cached := repository.NewCachedProfileRepository(store, profilecache.NewCache(client, 0), testutil.Logger())
	svc := NewService(cached, nil, testutil.Logger())
	ctx := context.Background()

	readDone := make(chan *domain.UserProfile)
	go func() {
		p, err := svc.Get(ctx, 42)
		assert.NoError(t, err)
		readDone <- p
	}()
	<-store.paused

	_, err := svc.SetLangConfig(ctx, 42, domain.LangConfigInline, "fr", "es")
	require.NoError(t, err)

	close(store.release)
	old := <-readDone
	assert.Equal(t, "en", old.LangFrom)

	_, err = svc.SetAPIKey(ctx, 42, "k2")
	require.NoError(t, err)

	stored, err := store.memoryRepository.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "fr", stored.LangFrom)
	assert.Equal(t, "k2", stored.YandexAPIKey)

	got, err := svc.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, stored.Equal(got))
}

func TestService_SetLangConfig(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepository(example42()), nil, testutil.Logger())

	profile, err := svc.SetLangConfig(ctx, 42, "other", "RU", "en")
	require.NoError(t, err)
	assert.Equal(t, "ru", profile.LangOtherFrom)
	assert.Equal(t, "en", profile.LangOtherTo)
	assert.Equal(t, "en", profile.LangFrom)

	_, err = svc.SetLangConfig(ctx, 42, "xx", "en", "ru")
	var notExists *errors.LangConfigNotExistsError
	require.True(t, stdErrors.As(err, &notExists))
	assert.Contains(t, err.Error(), "xx")

	_, err = svc.SetLangConfig(ctx, 42, "inline", "english", "ru")
	base, ok := errors.AsDomain(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidation, base.Code)

	cfg, err := svc.LangConfig(ctx, 42, "other")
	require.NoError(t, err)
	assert.Equal(t, domain.LangConfig{From: "ru", To: "en"}, cfg)
}

func TestService_SwapLangConfig(t *testing.T) {
	svc := NewService(newMemoryRepository(example42()), nil, testutil.Logger())

	profile, err := svc.SwapLangConfig(context.Background(), 42, domain.LangConfigInline)
	require.NoError(t, err)
	assert.Equal(t, "es", profile.LangFrom)
	assert.Equal(t, "en", profile.LangTo)

	_, err = svc.SwapLangConfig(context.Background(), 42, "nope")
	assert.True(t, errors.IsDomain(err))
}

func TestService_SetAPIKey(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil, testutil.Logger())

	profile, err := svc.SetAPIKey(context.Background(), 5, "  trnsl.1.1.abc ")
	require.NoError(t, err)
	assert.Equal(t, "trnsl.1.1.abc", profile.YandexAPIKey)
	assert.Equal(t, int64(5), profile.UserID)

	_, err = svc.SetAPIKey(context.Background(), 5, "")
	assert.True(t, errors.IsDomain(err))
}

func TestService_GetOrCreate(t *testing.T) {
	testCases := []struct {
		code       string
		wantInline domain.LangConfig
		wantOther  domain.LangConfig
	}{
		{code: "ru", wantInline: domain.LangConfig{From: "ru", To: "en"}, wantOther: domain.LangConfig{From: "en", To: "ru"}},
		{code: "en", wantInline: domain.LangConfig{From: "en", To: "es"}, wantOther: domain.LangConfig{From: "es", To: "en"}},
		{code: "pt-br", wantInline: domain.LangConfig{From: "pt", To: "en"}, wantOther: domain.LangConfig{From: "en", To: "pt"}},
		{code: "", wantInline: domain.LangConfig{From: "en", To: "es"}, wantOther: domain.LangConfig{From: "es", To: "en"}},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			svc := NewService(newMemoryRepository(), nil, testutil.Logger())

			profile, created, err := svc.GetOrCreate(context.Background(), 9, tc.code)
			require.NoError(t, err)
			assert.True(t, created)

			inline, _ := profile.LangConfig(domain.LangConfigInline)
			other, _ := profile.LangConfig(domain.LangConfigOther)
			assert.Equal(t, tc.wantInline, inline)
			assert.Equal(t, tc.wantOther, other)
			assert.False(t, profile.IsConfigured())

			again, created, err := svc.GetOrCreate(context.Background(), 9, "de")
			require.NoError(t, err)
			assert.False(t, created)
			assert.True(t, profile.Equal(again))
		})
	}
}

func TestLocalLocker_WaiterHonoursContext(t *testing.T) {
	locker := NewLocalLocker()

	unlock, err := locker.Lock(context.Background(), 42)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, 42)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// other users are not blocked
	unlockOther, err := locker.Lock(context.Background(), 7)
	require.NoError(t, err)
	unlockOther()

	unlock()

	unlock, err = locker.Lock(context.Background(), 42)
	require.NoError(t, err)
	unlock()
	assert.Empty(t, locker.locks)
}

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, testutil.Logger())
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 42)
	require.NoError(t, err)
	assert.True(t, mr.Exists("lanxat:profile:lock:42"))

	_, err = locker.Lock(ctx, 42)
	base, ok := errors.AsDomain(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeLocked, base.Code)

	unlock()
	assert.False(t, mr.Exists("lanxat:profile:lock:42"))

	unlock, err = locker.Lock(ctx, 42)
	require.NoError(t, err)
	unlock()
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, testutil.Logger())

	unlock, err := locker.Lock(context.Background(), 1)
	require.NoError(t, err)

	// the lock expired and another instance took it
	require.NoError(t, mr.Set("lanxat:profile:lock:1", "someone-else"))
	unlock()

	value, err := mr.Get("lanxat:profile:lock:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}
