package notify

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sunclx/seiri/src/features/config"
)

// TelegramNotifier pushes ingestion outcomes to the configured chats.
// It is outbound only; delivery failures are logged and never block
// the organizer.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	config *config.Manager
}

// NewTelegramNotifier creates a notifier from the configured bot token.
func NewTelegramNotifier(cfg *config.Manager) (*TelegramNotifier, error) {
	token := cfg.Get().Telegram.Token
	if token == "" {
		return nil, fmt.Errorf("telegram enabled but no token configured")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	slog.Info("Telegram notifier ready", "bot", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, config: cfg}, nil
}

// TrackIngested announces a track that reached the catalog.
func (n *TelegramNotifier) TrackIngested(track string, duplicate bool) {
	text := fmt.Sprintf("🎵 *Track added*\n%s", escapeMarkdown(track))
	if duplicate {
		text += "\n⚠️ Flagged as probable duplicate"
	}
	n.broadcast(text)
}

// TrackRejected announces a staging file the organizer refused.
func (n *TelegramNotifier) TrackRejected(path, reason string) {
	text := fmt.Sprintf("❌ *Track rejected*\n*Reason:* %s\n*File:* `%s`", escapeMarkdown(reason), path)
	n.broadcast(text)
}

func (n *TelegramNotifier) broadcast(text string) {
	for _, chatID := range n.config.Get().Telegram.ChatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := n.bot.Send(msg); err != nil {
			slog.Warn("Failed to send Telegram notification", "chat", chatID, "error", err)
		}
	}
}

// escapeMarkdown escapes special characters in text for safe Markdown usage
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"`", "\\`",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return replacer.Replace(text)
}
