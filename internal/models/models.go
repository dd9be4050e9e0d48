package models

// Config is built once at startup and handed to every component that needs it.
// Nothing mutates it afterwards.
type Config struct {
	Token string `env:"DISCORD_TOKEN,required"`
	Port  int    `env:"PORT" envDefault:"10000"`

	WelcomeChannelID string   `env:"WELCOME_CHANNEL_ID" envDefault:"1398947096794628206"`
	AutoRoleIDs      []string `env:"AUTO_ROLE_IDS" envDefault:"1392579956269256802,1392579956269256797"`
	SecretRoleName   string   `env:"SECRET_ROLE_NAME" envDefault:"Gamer"`
	WelcomeTemplate  string   `env:"WELCOME_TEMPLATE" envDefault:"Hello {mention}, welcome to **<:sflrplogo:1414185736801882133> South Florida Roleplay**! We’re glad to have you here!"`

	CounterEmoji    string `env:"COUNTER_EMOJI" envDefault:"<:peoples12:1416376261290491904>"`
	LinkEmoji       string `env:"LINK_EMOJI" envDefault:"<:exam:1416376255745626273>"`
	LinkLabel       string `env:"LINK_LABEL" envDefault:"Information"`
	LinkURL         string `env:"LINK_URL" envDefault:"https://discord.com/channels/1392579956143554580/1392584900674191512"`
	CountHumansOnly bool   `env:"COUNT_HUMANS_ONLY" envDefault:"true"`

	CommandPrefix   string `env:"COMMAND_PREFIX" envDefault:"s!"`
	BannedPhrase    string `env:"BANNED_PHRASE" envDefault:"sflrp sucks"`
	ModLogChannelID string `env:"MOD_LOG_CHANNEL_ID"`

	MetricsPort int `env:"METRICS_PORT" envDefault:"0"`

	Log LogConfig
}

// LogConfig controls the console and rotated file outputs.
type LogConfig struct {
	File       string `env:"LOG_FILE" envDefault:"discord.log"`
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}
