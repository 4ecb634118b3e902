package handlers

import (
	"context"
	stdErrors "errors"

	telebot "gopkg.in/telebot.v3"

	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/internal/translate"
	"github.com/Proton-105/lanxat-bot/pkg/metrics"
)

// MissingAPIKeyMessage tells users without a usable profile how to get one.
const MissingAPIKeyMessage = "Write '/yandexkey YOUR_API' to the bot to set Yandex API Key"

// InlineTimeoutMessage is shown when the translator did not answer in time.
const InlineTimeoutMessage = "Translation is taking too long, please try again"

// NewInlineQueryHandler translates finished inline queries with the sender's
// inline pair and explains unfinished ones.
func NewInlineQueryHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		query := c.Query()
		t := d.translator(c)

		parsed, ok := translate.ParseQuery(query.Text)
		if !ok {
			metrics.RecordInlineQuery("incomplete")
			return c.Answer(InfoResponse(t.T("inline.info_title"), translate.PendingQueryInfo(query.Text)))
		}

		ctx, cancel := context.WithTimeout(RequestContext(c), d.inlineTimeout())
		defer cancel()

		profile, err := d.Profiles.GetConfigured(ctx, query.Sender.ID)
		if err != nil {
			metrics.RecordInlineQuery("failed")
			return errors.NewInlineQueryError(query, profileProblem(err), err)
		}

		result, err := d.Translations.TranslateQuery(ctx, profile, parsed)
		if err != nil {
			metrics.RecordInlineQuery("failed")
			message := userMessage(err)
			if stdErrors.Is(ctx.Err(), context.DeadlineExceeded) {
				message = InlineTimeoutMessage
			}
			return errors.NewInlineQueryError(query, message, err)
		}

		metrics.RecordInlineQuery("translated")
		return c.Answer(TranslationResponse(parsed.Text, result))
	}
}

// TranslationResponse offers the source text, the translation and both
// together, each titled with its language.
func TranslationResponse(source string, result *translate.Result) *telebot.QueryResponse {
	return personalResponse(
		article("1", result.Lang.From, source),
		article("2", result.Lang.To, result.Text),
		article("3", result.Lang.ShortDescription(), "- "+result.Text+"\n- "+source),
	)
}

// InfoResponse is a single article carrying text.
func InfoResponse(title, text string) *telebot.QueryResponse {
	return personalResponse(article("1", title, text))
}

func article(id, title, text string) *telebot.ArticleResult {
	result := &telebot.ArticleResult{Title: title, Text: text, Description: text}
	result.SetResultID(id)
	return result
}

func personalResponse(results ...telebot.Result) *telebot.QueryResponse {
	return &telebot.QueryResponse{
		Results:    results,
		CacheTime:  0,
		IsPersonal: true,
	}
}

// profileProblem picks the hint for a profile that cannot translate yet.
func profileProblem(err error) string {
	var notExists *errors.ProfileNotExistsError
	if stdErrors.As(err, &notExists) {
		return MissingAPIKeyMessage
	}

	var notConfigured *errors.ProfileNotConfiguredError
	if stdErrors.As(err, &notConfigured) {
		missing := notConfigured.Profile.MissingFields()
		if len(missing) == 1 && missing[0] == "yandexApiKey" {
			return MissingAPIKeyMessage
		}
	}

	return userMessage(err)
}

func userMessage(err error) string {
	if base, ok := errors.AsDomain(err); ok && base.UserMessage != "" {
		return base.UserMessage
	}
	return "Something went wrong. Please try again later."
}
