package handlers

import (
	"context"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/bot/keyboard"
	"github.com/Proton-105/lanxat-bot/internal/domain"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/internal/i18n"
	"github.com/Proton-105/lanxat-bot/internal/testutil"
	"github.com/Proton-105/lanxat-bot/internal/translate"
)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetConfigured(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*domain.UserProfile)
	return p, args.Error(1)
}

func (m *mockProfiles) GetOrCreate(ctx context.Context, userID int64, languageCode string) (*domain.UserProfile, bool, error) {
	args := m.Called(ctx, userID, languageCode)
	p, _ := args.Get(0).(*domain.UserProfile)
	return p, args.Bool(1), args.Error(2)
}

func (m *mockProfiles) SetAPIKey(ctx context.Context, userID int64, apiKey string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID, apiKey)
	p, _ := args.Get(0).(*domain.UserProfile)
	return p, args.Error(1)
}

func (m *mockProfiles) SetLangConfig(ctx context.Context, userID int64, name, from, to string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID, name, from, to)
	p, _ := args.Get(0).(*domain.UserProfile)
	return p, args.Error(1)
}

func (m *mockProfiles) SwapLangConfig(ctx context.Context, userID int64, name string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID, name)
	p, _ := args.Get(0).(*domain.UserProfile)
	return p, args.Error(1)
}

type mockTranslations struct {
	mock.Mock
}

func (m *mockTranslations) TranslateQuery(ctx context.Context, profile *domain.UserProfile, q translate.Query) (*translate.Result, error) {
	args := m.Called(ctx, profile, q)
	r, _ := args.Get(0).(*translate.Result)
	return r, args.Error(1)
}

func (m *mockTranslations) TranslateMessage(ctx context.Context, profile *domain.UserProfile, text string) (*translate.Result, error) {
	args := m.Called(ctx, profile, text)
	r, _ := args.Get(0).(*translate.Result)
	return r, args.Error(1)
}

var alice = &telebot.User{ID: 42, FirstName: "Alice", LanguageCode: "en"}

func configured() *domain.UserProfile {
	return &domain.UserProfile{UserID: 42, YandexAPIKey: "k1", LangFrom: "en", LangTo: "es", LangOtherFrom: "es", LangOtherTo: "en"}
}

func newDeps(t *testing.T) (Deps, *mockProfiles, *mockTranslations) {
	t.Helper()

	catalog, err := i18n.Load("en")
	require.NoError(t, err)

	profiles := new(mockProfiles)
	translations := new(mockTranslations)

	return Deps{Profiles: profiles, Translations: translations, Catalog: catalog, BotName: "lanxatbot"}, profiles, translations
}

func articleAt(t *testing.T, resp *telebot.QueryResponse, i int) *telebot.ArticleResult {
	t.Helper()
	require.Greater(t, len(resp.Results), i)
	article, ok := resp.Results[i].(*telebot.ArticleResult)
	require.True(t, ok)
	return article
}

func TestInlineQuery_TranslatesFinishedQuery(t *testing.T) {
	d, profiles, translations := newDeps(t)
	profile := configured()
	lang := domain.LangConfig{From: "en", To: "es"}

	profiles.On("GetConfigured", mock.Anything, int64(42)).Return(profile, nil)
	translations.On("TranslateQuery", mock.Anything, profile, translate.Query{Text: "good night"}).
		Return(&translate.Result{Text: "buenas noches", Lang: lang}, nil)

	c := testutil.NewQueryContext(alice, "good night .")
	require.NoError(t, NewInlineQueryHandler(d)(c))

	require.Len(t, c.Answers, 1)
	resp := c.Answers[0]
	assert.True(t, resp.IsPersonal)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "en", articleAt(t, resp, 0).Title)
	assert.Equal(t, "good night", articleAt(t, resp, 0).Text)
	assert.Equal(t, "es", articleAt(t, resp, 1).Title)
	assert.Equal(t, "buenas noches", articleAt(t, resp, 1).Text)
	assert.Equal(t, "en-es", articleAt(t, resp, 2).Title)
	assert.Equal(t, "- buenas noches\n- good night", articleAt(t, resp, 2).Text)
	assert.Equal(t, "3", articleAt(t, resp, 2).ResultID())
}

func TestInlineQuery_UnfinishedQueryShowsInfo(t *testing.T) {
	d, profiles, _ := newDeps(t)

	c := testutil.NewQueryContext(alice, "hola")
	require.NoError(t, NewInlineQueryHandler(d)(c))

	require.Len(t, c.Answers, 1)
	info := articleAt(t, c.Answers[0], 0)
	assert.Equal(t, "Information", info.Title)
	assert.Contains(t, info.Text, "Num chars: 4, last char: 'a'")
	profiles.AssertNotCalled(t, "GetConfigured", mock.Anything, mock.Anything)
}

func TestInlineQuery_ProfileProblems(t *testing.T) {
	noKey := configured()
	noKey.YandexAPIKey = ""
	noLangs := configured()
	noLangs.LangTo = ""

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "no profile", err: errors.NewProfileNotExistsError(42), message: MissingAPIKeyMessage},
		{name: "missing key", err: errors.NewProfileNotConfiguredError(noKey), message: MissingAPIKeyMessage},
		{name: "missing langs", err: errors.NewProfileNotConfiguredError(noLangs), message: errors.NewProfileNotConfiguredError(noLangs).UserMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, profiles, _ := newDeps(t)
			profiles.On("GetConfigured", mock.Anything, int64(42)).Return(nil, tt.err)

			c := testutil.NewQueryContext(alice, "hello .")
			err := NewInlineQueryHandler(d)(c)

			var inlineErr *errors.InlineQueryError
			require.True(t, stdErrors.As(err, &inlineErr))
			assert.Same(t, c.Inline, inlineErr.Query)
			assert.Equal(t, tt.message, inlineErr.UserMessage)
			assert.Empty(t, c.Answers)
		})
	}
}

func TestInlineQuery_TranslationFailure(t *testing.T) {
	d, profiles, translations := newDeps(t)
	profile := configured()

	profiles.On("GetConfigured", mock.Anything, int64(42)).Return(profile, nil)
	translations.On("TranslateQuery", mock.Anything, profile, mock.Anything).
		Return(nil, errors.NewTranslationError("Yandex", "Invalid API key", 401, nil))

	c := testutil.NewQueryContext(alice, "hello .")
	err := NewInlineQueryHandler(d)(c)

	var inlineErr *errors.InlineQueryError
	require.True(t, stdErrors.As(err, &inlineErr))
	assert.Equal(t, "There was an error with Yandex API: Invalid API key", inlineErr.UserMessage)
}

func TestInlineQuery_SlowTranslatorHitsDeadline(t *testing.T) {
	d, profiles, translations := newDeps(t)
	d.InlineTimeout = 20 * time.Millisecond
	profile := configured()

	profiles.On("GetConfigured", mock.Anything, int64(42)).Return(profile, nil)
	translations.On("TranslateQuery", mock.Anything, profile, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			<-ctx.Done()
		}).
		Return(nil, context.DeadlineExceeded)

	c := testutil.NewQueryContext(alice, "hello .")
	start := time.Now()
	err := NewInlineQueryHandler(d)(c)

	assert.Less(t, time.Since(start), time.Second)
	var inlineErr *errors.InlineQueryError
	require.True(t, stdErrors.As(err, &inlineErr))
	assert.Equal(t, InlineTimeoutMessage, inlineErr.UserMessage)
}

func TestDeps_InlineTimeoutDefault(t *testing.T) {
	assert.Equal(t, DefaultInlineTimeout, Deps{}.inlineTimeout())
	assert.Equal(t, time.Second, Deps{InlineTimeout: time.Second}.inlineTimeout())
}

func TestMessageHandler_RepliesWithTranslation(t *testing.T) {
	d, profiles, translations := newDeps(t)
	profile := configured()

	profiles.On("GetConfigured", mock.Anything, int64(42)).Return(profile, nil)
	translations.On("TranslateMessage", mock.Anything, profile, "hola amigo").
		Return(&translate.Result{Text: "hello friend", Lang: domain.LangConfig{From: "es", To: "en"}}, nil)

	c := testutil.NewMessageContext(alice, "hola amigo")
	require.NoError(t, NewMessageHandler(d)(c))

	assert.Equal(t, "Translated es-en:\nhello friend", c.LastSent())
}

func TestMessageHandler_NotConfigured(t *testing.T) {
	d, profiles, translations := newDeps(t)
	notConfigured := errors.NewProfileNotConfiguredError(domain.NewUserProfile(42))
	profiles.On("GetConfigured", mock.Anything, int64(42)).Return(nil, notConfigured)

	c := testutil.NewMessageContext(alice, "hola")
	err := NewMessageHandler(d)(c)

	assert.ErrorIs(t, err, notConfigured)
	assert.Empty(t, c.Sent)
	translations.AssertNotCalled(t, "TranslateMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartHandler(t *testing.T) {
	d, profiles, _ := newDeps(t)
	profiles.On("GetOrCreate", mock.Anything, int64(42), "en").Return(configured(), true, nil).Once()

	c := testutil.NewMessageContext(alice, "/start")
	require.NoError(t, NewStartHandler(d)(c))

	assert.Contains(t, c.LastSent(), "Hi Alice!")
	assert.Contains(t, c.LastSent(), "Inline pair: en-es. Other pair: es-en.")
	assert.Contains(t, c.LastSent(), "@lanxatbot")
	require.Len(t, c.SentOpts, 1)
	assert.IsType(t, &telebot.ReplyMarkup{}, c.SentOpts[0][0])
}

func TestStartHandler_UsesProfileFromMiddleware(t *testing.T) {
	d, profiles, _ := newDeps(t)

	c := testutil.NewMessageContext(alice, "/start")
	c.Set(ProfileKey, configured())
	c.Set(ProfileCreatedKey, false)

	require.NoError(t, NewStartHandler(d)(c))

	assert.Equal(t, "Welcome back, Alice! Send /help to see what I can do.", c.LastSent())
	profiles.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestYandexKeyHandler(t *testing.T) {
	d, profiles, _ := newDeps(t)
	profiles.On("SetAPIKey", mock.Anything, int64(42), "secret-key").Return(configured(), nil)

	c := testutil.NewMessageContext(alice, "/yandexkey secret-key")
	c.Msg.ID = 7
	c.Set(ArgsKey, "secret-key")

	require.NoError(t, NewYandexKeyHandler(d)(c))

	assert.True(t, c.Deleted)
	assert.Equal(t, "Yandex API key saved.", c.LastSent())
}

func TestLangsHandler(t *testing.T) {
	t.Run("shows both pairs", func(t *testing.T) {
		d, _, _ := newDeps(t)
		c := testutil.NewMessageContext(alice, "/langs")
		c.Set(ProfileKey, configured())

		require.NoError(t, NewLangsHandler(d)(c))
		assert.Equal(t, "Inline: en-es\nOther: es-en", c.LastSent())
	})

	t.Run("changes a pair", func(t *testing.T) {
		d, profiles, _ := newDeps(t)
		updated := configured()
		updated.LangFrom, updated.LangTo = "ru", "en"
		profiles.On("SetLangConfig", mock.Anything, int64(42), "inline", "ru", "en").Return(updated, nil)

		c := testutil.NewMessageContext(alice, "/langs Inline ru en")
		c.Set(ArgsKey, "Inline ru en")

		require.NoError(t, NewLangsHandler(d)(c))
		assert.Equal(t, "Lang config inline is now ru-en.", c.LastSent())
	})

	t.Run("unknown pair", func(t *testing.T) {
		d, profiles, _ := newDeps(t)
		profiles.On("SetLangConfig", mock.Anything, int64(42), "xx", "ru", "en").
			Return(nil, errors.NewLangConfigNotExistsError("xx"))

		c := testutil.NewMessageContext(alice, "/langs xx ru en")
		c.Set(ArgsKey, "xx ru en")

		var notExists *errors.LangConfigNotExistsError
		assert.True(t, stdErrors.As(NewLangsHandler(d)(c), &notExists))
	})

	t.Run("usage", func(t *testing.T) {
		d, _, _ := newDeps(t)
		c := testutil.NewMessageContext(alice, "/langs ru")
		c.Set(ArgsKey, "ru")

		require.NoError(t, NewLangsHandler(d)(c))
		assert.Equal(t, "Usage: /langs <inline|other> <from> <to>", c.LastSent())
	})
}

func TestSwapCallbackHandler(t *testing.T) {
	d, profiles, _ := newDeps(t)
	swapped := configured()
	swapped.LangFrom, swapped.LangTo = "es", "en"
	profiles.On("SwapLangConfig", mock.Anything, int64(42), "inline").Return(swapped, nil)

	data, err := keyboard.EncodeCallback(keyboard.ActionSwap, domain.LangConfigInline)
	require.NoError(t, err)

	c := testutil.NewCallbackContext(alice, data)
	require.NoError(t, NewSwapCallbackHandler(d)(c))

	require.Len(t, c.Edited, 1)
	require.Len(t, c.Responses, 1)
	assert.Equal(t, "inline is now es-en", c.Responses[0].Text)
}

func TestUnknownCommandHandler(t *testing.T) {
	d, _, _ := newDeps(t)

	c := testutil.NewMessageContext(alice, "/weather today")
	require.NoError(t, NewUnknownCommandHandler(d)(c))

	assert.Equal(t, "Sorry, the command `/weather` is not implemented yet", c.LastSent())
	require.Len(t, c.SentOpts, 1)
	assert.Contains(t, c.SentOpts[0], telebot.ModeMarkdown)
}

type ctxKey struct{}

func TestRequestContext_DefaultsToBackground(t *testing.T) {
	c := testutil.NewMessageContext(alice, "hi")
	assert.Equal(t, context.Background(), RequestContext(c))

	ctx := context.WithValue(context.Background(), ctxKey{}, "x")
	c.Set(ContextKey, ctx)
	assert.Equal(t, ctx, RequestContext(c))
}
