// Package normalize приводит сырые записи платформ к единой модели контента.
package normalize

import (
	"time"

	"brand-profiler/internal/domain"
)

// Normalize отображает сырую запись в UnifiedContent. Функция тотальна:
// нераспознанная платформа и кривые поля дают обобщённое отображение,
// а не ошибку. Диспетчеризация — по дискриминатору "platform".
func Normalize(raw domain.RawRecord) domain.UnifiedContent {
	switch getString(raw, "platform") {
	case domain.PlatformBlog:
		return normalizeBlog(raw)
	case domain.PlatformInstagram:
		return normalizeInstagram(raw)
	case domain.PlatformYouTube:
		return normalizeYouTube(raw)
	case domain.PlatformTelegram:
		return normalizeTelegram(raw)
	default:
		return normalizeGeneric(raw)
	}
}

// NormalizeAll — последовательное отображение всего набора.
func NormalizeAll(raws []domain.RawRecord) []domain.UnifiedContent {
	contents := make([]domain.UnifiedContent, 0, len(raws))
	for _, raw := range raws {
		contents = append(contents, Normalize(raw))
	}
	return contents
}

func normalizeBlog(raw domain.RawRecord) domain.UnifiedContent {
	// блог — длиннотекстовый источник: реакции и медиа API не отдаёт
	return domain.UnifiedContent{
		Platform:         domain.PlatformBlog,
		Title:            getString(raw, "title"),
		BodyText:         getString(raw, "content"),
		Tags:             getStringSlice(raw, "tags"),
		CreatedAt:        parseTime(getString(raw, "published_at")),
		PlatformSpecific: pickExtras(raw, "id", "url"),
	}
}

func normalizeInstagram(raw domain.RawRecord) domain.UnifiedContent {
	mediaType := domain.MediaTypeImage
	if getString(raw, "media_type") == "VIDEO" {
		mediaType = domain.MediaTypeVideo
	}
	return domain.UnifiedContent{
		Platform: domain.PlatformInstagram,
		BodyText: getString(raw, "caption"),
		Media:    domain.NewMediaInfo(mediaType, getStringSlice(raw, "media_urls")),
		Engagement: &domain.EngagementMetrics{
			Likes:    getInt64(raw, "like_count"),
			Comments: getInt64(raw, "comments_count"),
		},
		CreatedAt:        parseTime(getString(raw, "timestamp")),
		PlatformSpecific: pickExtras(raw, "permalink", "media_type"),
	}
}

func normalizeYouTube(raw domain.RawRecord) domain.UnifiedContent {
	var urls []string
	if videoURL := getString(raw, "video_url"); videoURL != "" {
		urls = append(urls, videoURL)
	}
	return domain.UnifiedContent{
		Platform: domain.PlatformYouTube,
		Title:    getString(raw, "title"),
		BodyText: getString(raw, "description"),
		Media:    domain.NewMediaInfo(domain.MediaTypeVideo, urls),
		Tags:     getStringSlice(raw, "tags"),
		Engagement: &domain.EngagementMetrics{
			Likes:    getInt64(raw, "like_count"),
			Comments: getInt64(raw, "comment_count"),
			Views:    getInt64(raw, "view_count"),
		},
		CreatedAt:        parseTime(getString(raw, "published_at")),
		PlatformSpecific: pickExtras(raw, "video_id", "thumbnail_url", "subscriber_count", "channel_videos"),
	}
}

func normalizeTelegram(raw domain.RawRecord) domain.UnifiedContent {
	mediaType := domain.MediaTypeImage
	if getString(raw, "media_type") == "video" {
		mediaType = domain.MediaTypeVideo
	}
	return domain.UnifiedContent{
		Platform: domain.PlatformTelegram,
		BodyText: getString(raw, "text"),
		Media:    domain.NewMediaInfo(mediaType, getStringSlice(raw, "media_urls")),
		Engagement: &domain.EngagementMetrics{
			Shares: getInt64(raw, "forwards"),
			Views:  getInt64(raw, "views"),
		},
		CreatedAt:        parseUnix(raw, "date"),
		PlatformSpecific: pickExtras(raw, "url", "media_type"),
	}
}

// normalizeGeneric подбирает наиболее правдоподобные заголовок и текст
// и отбрасывает медиа и реакции. Никогда не паникует.
func normalizeGeneric(raw domain.RawRecord) domain.UnifiedContent {
	platform := getString(raw, "platform")
	if platform == "" {
		platform = "unknown"
	}
	title := firstNonEmpty(raw, "title", "name", "headline")
	body := firstNonEmpty(raw, "content", "text", "body", "description", "caption", "message")
	return domain.UnifiedContent{
		Platform: platform,
		Title:    title,
		BodyText: body,
		Tags:     getStringSlice(raw, "tags"),
	}
}

// Форматы времени, встречающиеся у платформ.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func parseUnix(raw domain.RawRecord, key string) *time.Time {
	seconds := getInt64(raw, key)
	if seconds <= 0 {
		return nil
	}
	parsed := time.Unix(seconds, 0).UTC()
	return &parsed
}

func getString(raw domain.RawRecord, key string) string {
	if value, ok := raw[key].(string); ok {
		return value
	}
	return ""
}

func getStringSlice(raw domain.RawRecord, key string) []string {
	switch value := raw[key].(type) {
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func getInt64(raw domain.RawRecord, key string) int64 {
	switch value := raw[key].(type) {
	case int64:
		return value
	case int:
		return int64(value)
	case float64:
		return int64(value)
	default:
		return 0
	}
}

func firstNonEmpty(raw domain.RawRecord, keys ...string) string {
	for _, key := range keys {
		if value := getString(raw, key); value != "" {
			return value
		}
	}
	return ""
}

// pickExtras переносит платформенные поля в открытый мешок без изменений.
func pickExtras(raw domain.RawRecord, keys ...string) map[string]any {
	extras := make(map[string]any)
	for _, key := range keys {
		if value, ok := raw[key]; ok {
			extras[key] = value
		}
	}
	if len(extras) == 0 {
		return nil
	}
	return extras
}
