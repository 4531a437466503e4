package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/example/sptracker/internal/scheduler"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of the Telegram API the bot uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot delivers pending-revision digests to a Telegram chat
type Bot struct {
	api    sender
	config *Config
	logger *slog.Logger
}

// New authorizes against the Telegram API and creates a bot
func New(config *Config, logger *slog.Logger) (*Bot, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	botAPI, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	logger.Info("telegram bot authorized", "account", botAPI.Self.UserName)

	return newBot(botAPI, config, logger), nil
}

func newBot(api sender, config *Config, logger *slog.Logger) *Bot {
	return &Bot{api: api, config: config, logger: logger}
}

// SendDigest implements the scheduler.Notifier interface
func (b *Bot) SendDigest(ctx context.Context, d scheduler.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(b.config.ChatID, FormatDigest(d))
	msg.ParseMode = b.config.ParseMode
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send digest", "tab", d.Tab, "chat_id", b.config.ChatID, "error", err)
		return fmt.Errorf("failed to send digest for tab %s: %w", d.Tab, err)
	}

	b.logger.Info("digest sent", "tab", d.Tab, "total", d.Total)
	return nil
}

// FormatDigest renders d as an HTML Telegram message
func FormatDigest(d scheduler.Digest) string {
	var sb strings.Builder

	noun := "revisions"
	if d.Total == 1 {
		noun = "revision"
	}
	fmt.Fprintf(&sb, "<b>%s</b>: %d %s due", html.EscapeString(d.Tab), d.Total, noun)
	if !d.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, " (%s)", d.GeneratedAt.Format("2006-01-02"))
	}
	sb.WriteString("\n")

	for _, c := range d.Pending {
		fmt.Fprintf(&sb, "• %s: %d\n", html.EscapeString(c.Category), c.Count)
	}
	return strings.TrimRight(sb.String(), "\n")
}
