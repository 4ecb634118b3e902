package handlers

import (
	stdErrors "errors"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/bot/keyboard"
	"github.com/Proton-105/lanxat-bot/internal/domain"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
)

// NewYandexKeyHandler stores the API key given as the command argument.
func NewYandexKeyHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		if _, err := d.Profiles.SetAPIKey(RequestContext(c), c.Sender().ID, CommandArgs(c)); err != nil {
			return err
		}

		// the key should not stay in the chat history
		if msg := c.Message(); msg != nil && msg.ID != 0 {
			_ = c.Delete()
		}

		return c.Send(d.translator(c).T("yandexkey.saved"))
	}
}

// NewLangsHandler shows both pairs, or with "<inline|other> <from> <to>"
// replaces one of them.
func NewLangsHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		t := d.translator(c)
		args := strings.Fields(CommandArgs(c))

		switch len(args) {
		case 0:
			profile, _, err := d.profile(c)
			if err != nil {
				return err
			}
			return c.Send(describePairs(t.T, profile))
		case 3:
			name := strings.ToLower(args[0])
			profile, err := d.Profiles.SetLangConfig(RequestContext(c), c.Sender().ID, name, args[1], args[2])
			if err != nil {
				return err
			}
			cfg, _ := profile.LangConfig(name)
			return c.Send(t.T("langs.updated", name, cfg.ShortDescription()))
		default:
			return c.Send(t.T("langs.usage"))
		}
	}
}

// NewSettingsHandler sends the swap keyboard.
func NewSettingsHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		profile, _, err := d.profile(c)
		if err != nil {
			return err
		}

		markup, err := keyboard.SettingsMenu(profile)
		if err != nil {
			return err
		}

		return c.Send(d.translator(c).T("settings.title"), markup)
	}
}

// NewSwapCallbackHandler reverses the pair named in the callback payload and
// refreshes the keyboard.
func NewSwapCallbackHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		_, name, err := keyboard.DecodeCallback(c.Callback().Data)
		if err != nil {
			return errors.NewValidationError(err.Error())
		}

		profile, err := d.Profiles.SwapLangConfig(RequestContext(c), c.Sender().ID, name)
		if err != nil {
			return err
		}

		markup, err := keyboard.SettingsMenu(profile)
		if err != nil {
			return err
		}

		cfg, _ := profile.LangConfig(name)
		if err := c.Edit(d.translator(c).T("settings.title"), markup); err != nil {
			// telegram rejects edits that change nothing
			if !stdErrors.Is(err, telebot.ErrSameMessageContent) {
				return err
			}
		}

		return c.Respond(&telebot.CallbackResponse{Text: d.translator(c).T("settings.swapped", name, cfg.ShortDescription())})
	}
}

func describePairs(tf func(string, ...any) string, profile *domain.UserProfile) string {
	inline, _ := profile.LangConfig(domain.LangConfigInline)
	other, _ := profile.LangConfig(domain.LangConfigOther)
	return tf("langs.current", inline.ShortDescription(), other.ShortDescription())
}
