package handlers

import (
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/bot/keyboard"
	"github.com/Proton-105/lanxat-bot/internal/domain"
)

// NewStartHandler greets the user, creating the profile on first contact.
func NewStartHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		profile, created, err := d.profile(c)
		if err != nil {
			return err
		}

		t := d.translator(c)
		name := c.Sender().FirstName

		if !created {
			return c.Send(t.T("start.welcome_back", name), keyboard.MainMenu())
		}

		inline, _ := profile.LangConfig(domain.LangConfigInline)
		other, _ := profile.LangConfig(domain.LangConfigOther)

		return c.Send(
			t.T("start.welcome", name, inline.ShortDescription(), other.ShortDescription(), d.BotName),
			keyboard.MainMenu(),
		)
	}
}

// NewHelpHandler explains inline and message translation.
func NewHelpHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		return c.Send(d.translator(c).T("help.text", d.BotName))
	}
}

// NewUnknownCommandHandler answers commands nobody registered.
func NewUnknownCommandHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		command := c.Text()
		if fields := strings.Fields(command); len(fields) > 0 {
			command = fields[0]
		}
		return c.Send(d.translator(c).T("command.unknown", command), telebot.ModeMarkdown)
	}
}
