package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// NewMessageHandler translates a plain text message with the sender's other pair.
func NewMessageHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		ctx := RequestContext(c)

		profile, err := d.Profiles.GetConfigured(ctx, c.Sender().ID)
		if err != nil {
			return err
		}

		result, err := d.Translations.TranslateMessage(ctx, profile, c.Text())
		if err != nil {
			return err
		}

		return c.Reply(d.translator(c).T("translate.reply", result.Lang.ShortDescription(), result.Text))
	}
}
