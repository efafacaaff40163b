package domain

import "time"

// Теги платформ, с которых собирается контент.
const (
	PlatformBlog      = "blog"
	PlatformInstagram = "instagram"
	PlatformYouTube   = "youtube"
	PlatformTelegram  = "telegram"
)

// MediaType описывает тип медиа-вложения.
type MediaType string

const (
	// MediaTypeImage — изображение или карусель изображений.
	MediaTypeImage MediaType = "image"
	// MediaTypeVideo — видеоролик.
	MediaTypeVideo MediaType = "video"
	// MediaTypeNone — вложения отсутствуют.
	MediaTypeNone MediaType = "none"
)

// RawRecord — сырая запись платформы до нормализации.
// Обязательное поле — дискриминатор "platform".
type RawRecord map[string]any

// MediaInfo описывает медиа-вложения единицы контента.
// Инвариант: Count всегда равен len(URLs).
type MediaInfo struct {
	Type  MediaType `json:"type"`
	URLs  []string  `json:"urls"`
	Count int       `json:"count"`
}

// NewMediaInfo создаёт MediaInfo с производным полем Count.
func NewMediaInfo(mediaType MediaType, urls []string) *MediaInfo {
	if len(urls) == 0 {
		return nil
	}
	return &MediaInfo{Type: mediaType, URLs: urls, Count: len(urls)}
}

// EngagementMetrics хранит счётчики реакций.
// Отсутствие всей структуры означает «данных нет»,
// нулевые значения — «измерено, ноль».
type EngagementMetrics struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
	Views    int64 `json:"views"`
}

// UnifiedContent — единое представление единицы контента любой платформы.
// Создаётся нормализатором из ровно одной сырой записи и далее неизменен.
type UnifiedContent struct {
	Platform         string             `json:"platform"`
	Title            string             `json:"title,omitempty"`
	BodyText         string             `json:"body_text"`
	Media            *MediaInfo         `json:"media,omitempty"`
	Tags             []string           `json:"tags,omitempty"`
	Engagement       *EngagementMetrics `json:"engagement,omitempty"`
	CreatedAt        *time.Time         `json:"created_at,omitempty"`
	PlatformSpecific map[string]any     `json:"platform_specific,omitempty"`
}

// HasMedia сообщает, есть ли у контента хотя бы одно вложение.
func (c UnifiedContent) HasMedia() bool {
	return c.Media != nil && len(c.Media.URLs) > 0
}
