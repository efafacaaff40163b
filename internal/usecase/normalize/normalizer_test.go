package normalize

import (
	"reflect"
	"testing"

	"brand-profiler/internal/domain"
)

func TestNormalizeBlog(t *testing.T) {
	raw := domain.RawRecord{
		"platform":     domain.PlatformBlog,
		"title":        "Как мы готовим кофе",
		"content":      "Рассказываем про обжарку.",
		"tags":         []string{"кофе", "обжарка"},
		"published_at": "2026-05-01T10:00:00Z",
		"url":          "https://blog.example.com/1",
	}
	content := Normalize(raw)
	if content.Platform != domain.PlatformBlog {
		t.Fatalf("ожидали платформу blog, получили %q", content.Platform)
	}
	if content.Title != "Как мы готовим кофе" || content.BodyText == "" {
		t.Fatalf("ожидали заголовок и текст")
	}
	if content.Media != nil {
		t.Fatalf("блог не должен давать медиа")
	}
	if content.Engagement != nil {
		t.Fatalf("блог не должен давать реакции")
	}
	if content.CreatedAt == nil {
		t.Fatalf("ожидали распарсенную дату")
	}
}

func TestNormalizeInstagramMediaCount(t *testing.T) {
	raw := domain.RawRecord{
		"platform":       domain.PlatformInstagram,
		"caption":        "Новая коллекция",
		"media_type":     "CAROUSEL_ALBUM",
		"media_urls":     []string{"https://cdn/1.jpg", "https://cdn/2.jpg", "https://cdn/3.jpg"},
		"like_count":     int64(120),
		"comments_count": int64(14),
		"timestamp":      "2026-04-02T09:30:00+0000",
	}
	content := Normalize(raw)
	if content.Media == nil {
		t.Fatalf("ожидали медиа")
	}
	if content.Media.Count != len(content.Media.URLs) {
		t.Fatalf("инвариант count == len(urls) нарушен: %d != %d", content.Media.Count, len(content.Media.URLs))
	}
	if content.Media.Count != 3 {
		t.Fatalf("ожидали 3 вложения, получили %d", content.Media.Count)
	}
	if content.Engagement == nil || content.Engagement.Likes != 120 || content.Engagement.Comments != 14 {
		t.Fatalf("ожидали реакции 120/14")
	}
	if content.CreatedAt == nil {
		t.Fatalf("ожидали распарсенную дату")
	}
}

func TestNormalizeYouTube(t *testing.T) {
	raw := domain.RawRecord{
		"platform":      domain.PlatformYouTube,
		"video_id":      "abc123",
		"title":         "Обзор продукта",
		"description":   "Подробный обзор.",
		"video_url":     "https://www.youtube.com/watch?v=abc123",
		"view_count":    int64(1000),
		"like_count":    int64(50),
		"comment_count": int64(7),
		"published_at":  "2026-03-10T12:00:00Z",
	}
	content := Normalize(raw)
	if content.Media == nil || content.Media.Type != domain.MediaTypeVideo {
		t.Fatalf("ожидали видео-медиа")
	}
	if content.Engagement == nil || content.Engagement.Views != 1000 {
		t.Fatalf("ожидали просмотры в реакциях")
	}
}

func TestNormalizeUnknownPlatformNeverFails(t *testing.T) {
	raws := []domain.RawRecord{
		{"platform": "mastodon", "text": "пост", "title": "заголовок"},
		{"platform": "mastodon"},
		{},
		{"platform": "mastodon", "content": 42, "tags": "не список"},
	}
	for i, raw := range raws {
		content := Normalize(raw)
		if content.Platform == "" {
			t.Fatalf("случай %d: платформа не должна быть пустой", i)
		}
		if content.Media != nil || content.Engagement != nil {
			t.Fatalf("случай %d: обобщённое отображение не должно давать медиа и реакции", i)
		}
	}
}

func TestNormalizeUnknownScavengesText(t *testing.T) {
	content := Normalize(domain.RawRecord{"platform": "vk", "message": "привет", "name": "пост"})
	if content.Title != "пост" {
		t.Fatalf("ожидали заголовок из name, получили %q", content.Title)
	}
	if content.BodyText != "привет" {
		t.Fatalf("ожидали текст из message, получили %q", content.BodyText)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := domain.RawRecord{
		"platform":   domain.PlatformTelegram,
		"text":       "пост канала",
		"date":       int64(1767225600),
		"views":      int64(500),
		"forwards":   int64(12),
		"media_type": "image",
		"media_urls": []string{"https://t.me/demo/1"},
		"url":        "https://t.me/demo/1",
	}
	first := Normalize(raw)
	second := Normalize(raw)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("нормализация не идемпотентна: %+v != %+v", first, second)
	}
}

func TestNormalizeBadTimestampGivesNil(t *testing.T) {
	content := Normalize(domain.RawRecord{
		"platform":     domain.PlatformBlog,
		"title":        "пост",
		"content":      "текст",
		"published_at": "вчера вечером",
	})
	if content.CreatedAt != nil {
		t.Fatalf("кривую дату следует отбрасывать, а не падать")
	}
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	raws := []domain.RawRecord{
		{"platform": domain.PlatformBlog, "title": "первый", "content": "a"},
		{"platform": domain.PlatformInstagram, "caption": "второй"},
	}
	contents := NormalizeAll(raws)
	if len(contents) != 2 {
		t.Fatalf("ожидали 2 записи, получили %d", len(contents))
	}
	if contents[0].Platform != domain.PlatformBlog || contents[1].Platform != domain.PlatformInstagram {
		t.Fatalf("порядок записей должен сохраняться")
	}
}
