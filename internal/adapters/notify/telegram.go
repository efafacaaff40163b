package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"brand-profiler/internal/domain"
)

// TelegramNotifier шлёт оператору сводку готового профиля.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

var _ domain.Notifier = (*TelegramNotifier)(nil)

// NewTelegram создаёт нотификатор на базе Bot API.
func NewTelegram(token string, chatID int64, log zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("создание бота: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}, nil
}

// NotifyProfileReady отправляет короткую сводку профиля.
func (n *TelegramNotifier) NotifyProfileReady(_ context.Context, profile domain.BrandProfile) error {
	text := formatSummary(profile)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("отправка уведомления: %w", err)
	}
	n.log.Debug().Str("brand_id", profile.BrandID).Msg("нотификатор: сводка отправлена")
	return nil
}

func formatSummary(profile domain.BrandProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Профиль бренда «%s» готов\n", profile.BrandName)
	fmt.Fprintf(&b, "Тип бизнеса: %s\n", profile.Identity.BusinessType)
	fmt.Fprintf(&b, "Тон: %s\n", profile.Tone.Description)
	if len(profile.Strategy.PrimaryTopics) > 0 {
		fmt.Fprintf(&b, "Темы: %s\n", strings.Join(profile.Strategy.PrimaryTopics, ", "))
	}
	fmt.Fprintf(&b, "Платформы: %s\n", strings.Join(profile.AnalyzedPlatforms, ", "))
	fmt.Fprintf(&b, "Записей проанализировано: %d\n", profile.TotalContentsAnalyzed)
	fmt.Fprintf(&b, "Происхождение: %s, доверие: %s", profile.Source, profile.ConfidenceLevel)
	return b.String()
}
