package bot

// Commands understood by the bot.
const (
	CommandStart     = "/start"
	CommandHelp      = "/help"
	CommandYandexKey = "/yandexkey"
	CommandLangs     = "/langs"
	CommandSettings  = "/settings"
)
