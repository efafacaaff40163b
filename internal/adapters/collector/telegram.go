package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/metrics"
)

// Telegram собирает посты публичного канала через MTProto.
// Локатор — публичный алиас канала без @.
type Telegram struct {
	client *telegram.Client
	log    zerolog.Logger
}

var _ domain.Collector = (*Telegram)(nil)

// NewTelegram создаёт MTProto клиент с файловой сессией.
func NewTelegram(apiID int, apiHash, sessionFile string, log zerolog.Logger) *Telegram {
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: sessionFile},
	})
	return &Telegram{client: client, log: log}
}

// Collect выгружает историю канала. Любой сбой даёт пустой срез.
func (t *Telegram) Collect(ctx context.Context, locator string, maxItems int) []domain.RawRecord {
	var records []domain.RawRecord
	start := time.Now()
	err := t.client.Run(ctx, func(ctx context.Context) error {
		fetched, err := t.fetchHistory(ctx, locator, maxItems)
		if err != nil {
			return err
		}
		records = fetched
		return nil
	})
	metrics.ObserveNetworkRequest("telegram", "get_history", locator, start, err)
	if err != nil {
		metrics.CollectorErrors.WithLabelValues(domain.PlatformTelegram).Inc()
		t.log.Warn().Err(err).Str("locator", locator).Msg("telegram: сбор не удался")
		return nil
	}
	metrics.CollectorItems.WithLabelValues(domain.PlatformTelegram).Add(float64(len(records)))
	return records
}

func (t *Telegram) fetchHistory(ctx context.Context, alias string, maxItems int) ([]domain.RawRecord, error) {
	api := t.client.API()

	resolved, err := api.ContactsResolveUsername(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", alias, err)
	}
	var channel *tg.Channel
	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			channel = ch
			break
		}
	}
	if channel == nil {
		return nil, fmt.Errorf("alias %s не является каналом", alias)
	}

	history, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash},
		Limit: maxItems,
	})
	if err != nil {
		return nil, fmt.Errorf("история %s: %w", alias, err)
	}
	messages, ok := history.(*tg.MessagesChannelMessages)
	if !ok {
		return nil, fmt.Errorf("история %s: неожиданный тип ответа %T", alias, history)
	}

	records := make([]domain.RawRecord, 0, len(messages.Messages))
	for _, raw := range messages.Messages {
		msg, ok := raw.(*tg.Message)
		if !ok {
			continue
		}
		if maxItems > 0 && len(records) >= maxItems {
			break
		}
		record := domain.RawRecord{
			"platform": domain.PlatformTelegram,
			"text":     msg.Message,
			"date":     int64(msg.Date),
			"views":    int64(msg.Views),
			"forwards": int64(msg.Forwards),
			"url":      fmt.Sprintf("https://t.me/%s/%d", alias, msg.ID),
		}
		if mediaType, hasMedia := classifyMedia(msg.Media); hasMedia {
			record["media_type"] = mediaType
			// прямых ссылок MTProto не отдаёт, используем ссылку на пост
			record["media_urls"] = []string{fmt.Sprintf("https://t.me/%s/%d", alias, msg.ID)}
		}
		records = append(records, record)
	}
	return records, nil
}

func classifyMedia(media tg.MessageMediaClass) (string, bool) {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return "image", true
	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return "", false
		}
		for _, attr := range doc.Attributes {
			if _, isVideo := attr.(*tg.DocumentAttributeVideo); isVideo {
				return "video", true
			}
		}
		return "", false
	default:
		return "", false
	}
}
