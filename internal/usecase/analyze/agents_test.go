package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"brand-profiler/internal/domain"
)

type stubExtractor struct {
	response string
	err      error
	prompts  []string
}

func (s *stubExtractor) GenerateStructured(_ context.Context, prompt string, _ float64) (json.RawMessage, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.response), nil
}

func TestTextAgentEmptyInputReturnsDefault(t *testing.T) {
	extractor := &stubExtractor{}
	agent := NewTextAgent(extractor, zerolog.Nop())
	result := agent.Analyze(context.Background(), nil)
	if !reflect.DeepEqual(result, domain.DefaultTextAnalysis()) {
		t.Fatalf("ожидали запись по умолчанию, получили %+v", result)
	}
	if len(extractor.prompts) != 0 {
		t.Fatalf("на пустом входе LLM вызываться не должен")
	}
}

func TestTextAgentExtractorFailureReturnsDefault(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("таймаут")}
	agent := NewTextAgent(extractor, zerolog.Nop())
	contents := []domain.UnifiedContent{{Platform: "blog", BodyText: "текст поста"}}
	result := agent.Analyze(context.Background(), contents)
	if !reflect.DeepEqual(result, domain.DefaultTextAnalysis()) {
		t.Fatalf("при сбое извлечения ожидали запись по умолчанию")
	}
}

func TestTextAgentParsesAndClampsScores(t *testing.T) {
	extractor := &stubExtractor{response: `{
		"writing_style": "storytelling",
		"tone": "тёплый",
		"formality_score": 150,
		"warmth_score": -5,
		"enthusiasm_score": 70,
		"signature_phrases": ["до встречи", " "],
		"emoji_usage": "moderate",
		"keyword_frequency": {"кофе": 9}
	}`}
	agent := NewTextAgent(extractor, zerolog.Nop())
	contents := []domain.UnifiedContent{{Platform: "blog", Title: "пост", BodyText: "текст"}}
	result := agent.Analyze(context.Background(), contents)
	if result.FormalityScore != 100 || result.WarmthScore != 0 {
		t.Fatalf("оценки должны зажиматься в 0-100, получили %d/%d", result.FormalityScore, result.WarmthScore)
	}
	if result.WritingStyle != "storytelling" || result.EmojiUsage != "moderate" {
		t.Fatalf("поля ответа не перенесены: %+v", result)
	}
	if len(result.SignaturePhrases) != 1 {
		t.Fatalf("пустые фразы должны отбрасываться")
	}
	if result.KeywordFrequency["кофе"] != 9 {
		t.Fatalf("частоты ключевых слов не перенесены")
	}
}

func TestVisualAgentEmptyInputReturnsDefault(t *testing.T) {
	extractor := &stubExtractor{}
	agent := NewVisualAgent(extractor, zerolog.Nop())
	result := agent.Analyze(context.Background(), nil)
	if !reflect.DeepEqual(result, domain.DefaultVisualAnalysis()) {
		t.Fatalf("ожидали запись по умолчанию, получили %+v", result)
	}
}

func TestVisualAgentTextOnlyFallback(t *testing.T) {
	extractor := &stubExtractor{response: `{"color_palette": ["#112233"], "image_style": "минимализм", "composition_style": "центр", "visual_themes": ["кофе"]}`}
	agent := NewVisualAgent(extractor, zerolog.Nop())
	contents := []domain.UnifiedContent{{Platform: "blog", BodyText: "пишем про кофе"}}
	result := agent.Analyze(context.Background(), contents)
	if result.HasVisualContent {
		t.Fatalf("без медиа has_visual_content должен быть false")
	}
	if result.ImageStyle != "минимализм" {
		t.Fatalf("вывод из текста должен заполнять стиль, получили %q", result.ImageStyle)
	}
	if len(extractor.prompts) != 1 || !strings.Contains(extractor.prompts[0], "нет медиа") {
		t.Fatalf("ожидали текстовый промпт пониженного доверия")
	}
}

func TestVisualAgentWithMedia(t *testing.T) {
	extractor := &stubExtractor{response: `{"color_palette": ["#FFFFFF"], "image_style": "фото", "composition_style": "сетка", "visual_themes": ["еда"]}`}
	agent := NewVisualAgent(extractor, zerolog.Nop())
	contents := []domain.UnifiedContent{
		{Platform: "blog", BodyText: "без медиа"},
		{
			Platform: "instagram",
			BodyText: "подпись",
			Media:    domain.NewMediaInfo(domain.MediaTypeImage, []string{"https://cdn/1.jpg"}),
		},
	}
	result := agent.Analyze(context.Background(), contents)
	if !result.HasVisualContent {
		t.Fatalf("с медиа has_visual_content должен быть true")
	}
	if len(extractor.prompts) != 1 || !strings.Contains(extractor.prompts[0], "instagram") {
		t.Fatalf("сводка медиа должна попасть в промпт")
	}
}

func TestVisualAgentFailureReturnsDefault(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("сбой")}
	agent := NewVisualAgent(extractor, zerolog.Nop())
	contents := []domain.UnifiedContent{{
		Platform: "instagram",
		Media:    domain.NewMediaInfo(domain.MediaTypeImage, []string{"https://cdn/1.jpg"}),
	}}
	result := agent.Analyze(context.Background(), contents)
	if !reflect.DeepEqual(result, domain.DefaultVisualAnalysis()) {
		t.Fatalf("при сбое извлечения ожидали запись по умолчанию")
	}
}

func TestEngagementAgentEmptyInputReturnsDefault(t *testing.T) {
	agent := NewEngagementAgent()
	result := agent.Analyze(context.Background(), nil)
	if !reflect.DeepEqual(result, domain.DefaultEngagementAnalysis()) {
		t.Fatalf("ожидали запись по умолчанию, получили %+v", result)
	}
}

func TestEngagementAgentAdditiveRate(t *testing.T) {
	agent := NewEngagementAgent()
	contents := []domain.UnifiedContent{
		{Platform: "instagram", Engagement: &domain.EngagementMetrics{Likes: 10, Comments: 2}},
		{Platform: "youtube", Engagement: &domain.EngagementMetrics{Likes: 20, Comments: 8}},
		{Platform: "blog"}, // без метрик, пропускается
	}
	result := agent.Analyze(context.Background(), contents)
	if !result.HasEngagementData {
		t.Fatalf("ожидали has_engagement_data=true")
	}
	// avg_likes=15, avg_comments=5, аддитивная прокси = 20
	if result.AvgEngagementRate != 20.0 {
		t.Fatalf("ожидали avg_engagement_rate 20.0, получили %v", result.AvgEngagementRate)
	}
	if result.TotalLikes != 30 || result.TotalComments != 10 {
		t.Fatalf("суммы не сходятся: %d/%d", result.TotalLikes, result.TotalComments)
	}
	if _, ok := result.ByPlatform["instagram"]; !ok {
		t.Fatalf("ожидали ключ платформы instagram")
	}
	if _, ok := result.ByPlatform["youtube"]; !ok {
		t.Fatalf("ожидали ключ платформы youtube")
	}
	if _, ok := result.ByPlatform["blog"]; ok {
		t.Fatalf("платформа без метрик не должна попадать в разбивку")
	}
}

func TestEngagementAgentMeasuredZeroCounts(t *testing.T) {
	agent := NewEngagementAgent()
	contents := []domain.UnifiedContent{
		{Platform: "instagram", Engagement: &domain.EngagementMetrics{}},
	}
	result := agent.Analyze(context.Background(), contents)
	if !result.HasEngagementData {
		t.Fatalf("измеренный ноль — это данные, а не их отсутствие")
	}
	if result.AvgEngagementRate != 0 {
		t.Fatalf("ожидали нулевую вовлечённость")
	}
}
