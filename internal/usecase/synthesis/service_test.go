package synthesis

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

func sampleInput() Input {
	return Input{
		BrandID:   "brand-1",
		BrandName: "Кофейня",
		Text: domain.TextAnalysis{
			WritingStyle:    "storytelling",
			Tone:            "тёплый",
			FormalityScore:  30,
			WarmthScore:     80,
			EnthusiasmScore: 60,
			EmojiUsage:      "moderate",
			KeywordFrequency: map[string]int{
				"кофе": 9, "зерно": 4, "утро": 4, "арабика": 2, "бариста": 7, "эспрессо": 1,
			},
		},
		Visual:     domain.DefaultVisualAnalysis(),
		Engagement: domain.DefaultEngagementAnalysis(),
		Contents: []domain.UnifiedContent{
			{Platform: domain.PlatformBlog, BodyText: "свежая обжарка каждую неделю"},
		},
		Platforms: []string{"blog"},
	}
}

func TestSynthesizeCoercesUnknownBusinessType(t *testing.T) {
	extractor := &stubExtractor{response: `{
		"brand_name": "Кофейня",
		"business_type": "beauty",
		"personality_traits": ["уютный"],
		"core_values": ["вкус"],
		"target_audience": "горожане",
		"tone_description": "тёплый дружеский"
	}`}
	svc := NewService(extractor, zerolog.Nop(), 5, 10)

	profile, err := svc.Synthesize(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if profile.Identity.BusinessType != domain.BusinessTypeService {
		t.Fatalf("неизвестный тип бизнеса должен приводиться к service, получили %q", profile.Identity.BusinessType)
	}
}

func TestSynthesizeExtractorFailureFallsBackToDefaults(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("сбой")}
	svc := NewService(extractor, zerolog.Nop(), 5, 10)

	profile, err := svc.Synthesize(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("сбой идентичности не фатален: %v", err)
	}
	if profile.Identity.BrandName != "Кофейня" {
		t.Fatalf("имя бренда должно браться из входа, получили %q", profile.Identity.BrandName)
	}
	if profile.Identity.BusinessType != domain.BusinessTypeService {
		t.Fatalf("идентичность по умолчанию должна иметь тип service")
	}
}

func TestSynthesizeEmptyBrandIDIsFatal(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("сбой")}
	svc := NewService(extractor, zerolog.Nop(), 5, 10)

	in := sampleInput()
	in.BrandID = ""
	if _, err := svc.Synthesize(context.Background(), in); err == nil {
		t.Fatalf("пустой идентификатор бренда должен приводить к ошибке сборки")
	}
}

func TestTopKeywordsDeterministicOrder(t *testing.T) {
	frequency := map[string]int{"кофе": 9, "бариста": 7, "зерно": 4, "утро": 4, "арабика": 2, "эспрессо": 1}
	got := topKeywords(frequency, 5)
	want := []string{"кофе", "бариста", "зерно", "утро", "арабика"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ожидали %v, получили %v", want, got)
	}
	// при равной частоте порядок лексикографический
	for i := 0; i < 10; i++ {
		if again := topKeywords(frequency, 5); !reflect.DeepEqual(again, want) {
			t.Fatalf("порядок не детерминирован: %v", again)
		}
	}
}

func TestSynthesizeFromBusinessInfoProvenance(t *testing.T) {
	extractor := &stubExtractor{response: `{
		"brand_name": "Пекарня",
		"business_type": "food",
		"personality_traits": ["домашний"],
		"core_values": ["свежесть"],
		"target_audience": "семьи",
		"tone_description": "тёплый"
	}`}
	svc := NewService(extractor, zerolog.Nop(), 5, 10)

	profile, err := svc.SynthesizeFromBusinessInfo(context.Background(), domain.BusinessInfo{
		BrandID:      "brand-2",
		BrandName:    "Пекарня",
		BusinessType: "food",
		Description:  "домашняя выпечка и хлеб на закваске",
		Keywords:     []string{"хлеб", "выпечка"},
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if profile.Source != domain.SourceInferredFromBusinessInfo {
		t.Fatalf("ожидали происхождение inferred_from_business_info, получили %q", profile.Source)
	}
	if profile.ConfidenceLevel != domain.ConfidenceLow {
		t.Fatalf("для прикидки из анкеты доверие должно быть low, получили %q", profile.ConfidenceLevel)
	}
	if !reflect.DeepEqual(profile.Strategy.PrimaryTopics, []string{"хлеб", "выпечка"}) {
		t.Fatalf("ключевые слова анкеты должны стать темами: %v", profile.Strategy.PrimaryTopics)
	}
}

func TestRenderPromptsContainIdentityAndVisual(t *testing.T) {
	identity := defaultIdentity("Кофейня")
	tone := buildTone(domain.DefaultTextAnalysis())
	strategy := domain.ContentStrategy{PrimaryTopics: []string{"кофе"}, ContentStructure: "conversational", PostingPattern: "regular"}
	visual := domain.VisualStyle{ColorPalette: []string{"#5C4033"}, ImageStyle: "минимализм", CompositionStyle: "центр", VisualThemes: []string{"кофе"}}

	prompts := RenderPrompts(identity, tone, strategy, visual)
	if !strings.Contains(prompts.TextPrompt, "Кофейня") {
		t.Fatalf("текстовый промпт должен содержать имя бренда")
	}
	if !strings.Contains(prompts.ImagePrompt, "минимализм") || !strings.Contains(prompts.ImagePrompt, "#5C4033") {
		t.Fatalf("промпт изображений должен содержать стиль и палитру: %q", prompts.ImagePrompt)
	}
	if prompts.TextPrompt == "" || prompts.ImagePrompt == "" {
		t.Fatalf("оба промпта обязательны")
	}
}
