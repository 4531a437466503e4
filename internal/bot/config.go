package bot

import "errors"

// Config represents the configuration for the digest bot
type Config struct {
	// Bot token issued by BotFather
	Token string
	// Chat that receives the digests
	ChatID int64
	// Parse mode of outgoing messages
	ParseMode string
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *Config {
	return &Config{
		ParseMode: "HTML",
	}
}

// Validate reports whether the bot can be started with c
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("telegram bot token is not set")
	}
	if c.ChatID == 0 {
		return errors.New("telegram chat id is not set")
	}
	return nil
}
