package keyboard

import (
	telebot "gopkg.in/telebot.v3"
)

// MainMenu is a persistent reply keyboard with the everyday commands.
func MainMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}

	markup.Reply(
		markup.Row(markup.Text("/langs"), markup.Text("/settings")),
		markup.Row(markup.Text("/help")),
	)

	return markup
}
