package domain

type Config struct {
	TmdbApiToken      string `toml:"tmdb_api_token" mapstructure:"tmdb_api_token"`
	SessionSecret     string `toml:"session_secret" mapstructure:"session_secret"`
	DataDir           string `toml:"data_dir" mapstructure:"data_dir"`
	ListenAddr        string `toml:"listen_addr" mapstructure:"listen_addr"`
	DiscordWebhookURL string `toml:"discord_webhook_url" mapstructure:"discord_webhook_url"`
}
