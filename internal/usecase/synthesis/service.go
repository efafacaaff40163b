// Package synthesis собирает результаты анализа в единый бренд-профиль.
package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"brand-profiler/internal/domain"
)

const defaultIdentitySamples = 10

// Input — входные данные основного пути синтеза.
type Input struct {
	BrandID    string
	BrandName  string
	Text       domain.TextAnalysis
	Visual     domain.VisualAnalysis
	Engagement domain.EngagementAnalysis
	Contents   []domain.UnifiedContent
	Platforms  []string
}

// Service строит бренд-профиль из результатов анализа.
type Service struct {
	extractor       domain.Extractor
	log             zerolog.Logger
	topKeywords     int
	identitySamples int
}

// NewService создаёт синтезатор.
func NewService(extractor domain.Extractor, log zerolog.Logger, topKeywords, identitySamples int) *Service {
	if topKeywords <= 0 {
		topKeywords = 5
	}
	if identitySamples <= 0 {
		identitySamples = defaultIdentitySamples
	}
	return &Service{extractor: extractor, log: log, topKeywords: topKeywords, identitySamples: identitySamples}
}

// Synthesize собирает профиль по основному пути. Генеративные шаги при
// сбое откатываются на записи по умолчанию, фатальна только сборка.
// Происхождение и уровень доверия проставляет вызывающий оркестратор.
func (s *Service) Synthesize(ctx context.Context, in Input) (domain.BrandProfile, error) {
	identity := s.inferIdentity(ctx, in)
	tone := buildTone(in.Text)
	strategy := s.buildStrategy(in.Text, in.Engagement)
	visual := buildVisual(in.Visual)
	prompts := RenderPrompts(identity, tone, strategy, visual)

	profile, err := assemble(in.BrandID, identity, tone, strategy, visual, prompts, in.Platforms, len(in.Contents))
	if err != nil {
		return domain.BrandProfile{}, fmt.Errorf("сборка бренд-профиля: %w", err)
	}
	return profile, nil
}

// SynthesizeFromBusinessInfo строит профиль-прикидку только из анкеты
// бизнеса, минуя сбор и анализ. Происхождение — inferred, доверие — low.
func (s *Service) SynthesizeFromBusinessInfo(ctx context.Context, info domain.BusinessInfo) (domain.BrandProfile, error) {
	identity := s.inferIdentityFromInfo(ctx, info)
	tone := buildTone(domain.DefaultTextAnalysis())
	strategy := domain.ContentStrategy{
		PrimaryTopics:    append([]string{}, info.Keywords...),
		ContentStructure: "conversational",
		PostingPattern:   "regular",
	}
	visual := buildVisual(domain.DefaultVisualAnalysis())
	prompts := RenderPrompts(identity, tone, strategy, visual)

	profile, err := assemble(info.BrandID, identity, tone, strategy, visual, prompts, nil, 0)
	if err != nil {
		return domain.BrandProfile{}, fmt.Errorf("сборка бренд-профиля: %w", err)
	}
	profile.Source = domain.SourceInferredFromBusinessInfo
	profile.ConfidenceLevel = domain.ConfidenceForSource(profile.Source)
	return profile, nil
}

type identityPayload struct {
	BrandName         string   `json:"brand_name"`
	BusinessType      string   `json:"business_type"`
	PersonalityTraits []string `json:"personality_traits"`
	CoreValues        []string `json:"core_values"`
	TargetAudience    string   `json:"target_audience"`
	ToneDescription   string   `json:"tone_description"`
}

func (s *Service) inferIdentity(ctx context.Context, in Input) domain.BrandIdentity {
	samples := sampleTexts(in.Contents, s.identitySamples)
	if samples == "" {
		return defaultIdentity(in.BrandName)
	}

	prompt := fmt.Sprintf(`По примерам публикаций бренда выведи его идентичность.
Верни строго JSON формата:
{"brand_name": "...", "business_type": "food|fashion|health|education|tech|retail|service", "personality_traits": ["..."], "core_values": ["..."], "target_audience": "...", "tone_description": "..."}
Поле business_type выбирай только из перечисленных значений.

Примеры публикаций:
%s`, samples)

	raw, err := s.extractor.GenerateStructured(ctx, prompt, 0.2)
	if err != nil {
		s.log.Warn().Err(err).Msg("синтез: идентичность не извлечена, значения по умолчанию")
		return defaultIdentity(in.BrandName)
	}
	var parsed identityPayload
	if err := json.Unmarshal(raw, &parsed); err != nil {
		s.log.Warn().Err(err).Msg("синтез: невалидный ответ идентичности, значения по умолчанию")
		return defaultIdentity(in.BrandName)
	}
	return identityFromPayload(parsed, in.BrandName)
}

func (s *Service) inferIdentityFromInfo(ctx context.Context, info domain.BusinessInfo) domain.BrandIdentity {
	description := strings.TrimSpace(info.Description)
	if description == "" {
		identity := defaultIdentity(info.BrandName)
		identity.BusinessType = domain.CoerceBusinessType(info.BusinessType)
		return identity
	}

	prompt := fmt.Sprintf(`По анкете бизнеса выведи идентичность бренда.
Верни строго JSON формата:
{"brand_name": "...", "business_type": "food|fashion|health|education|tech|retail|service", "personality_traits": ["..."], "core_values": ["..."], "target_audience": "...", "tone_description": "..."}
Поле business_type выбирай только из перечисленных значений.

Название: %s
Тип бизнеса: %s
Описание: %s
Ключевые слова: %s`,
		info.BrandName, info.BusinessType, description, strings.Join(info.Keywords, ", "))

	raw, err := s.extractor.GenerateStructured(ctx, prompt, 0.4)
	if err != nil {
		s.log.Warn().Err(err).Msg("синтез: идентичность из анкеты не извлечена, значения по умолчанию")
		identity := defaultIdentity(info.BrandName)
		identity.BusinessType = domain.CoerceBusinessType(info.BusinessType)
		return identity
	}
	var parsed identityPayload
	if err := json.Unmarshal(raw, &parsed); err != nil {
		s.log.Warn().Err(err).Msg("синтез: невалидный ответ идентичности, значения по умолчанию")
		identity := defaultIdentity(info.BrandName)
		identity.BusinessType = domain.CoerceBusinessType(info.BusinessType)
		return identity
	}
	return identityFromPayload(parsed, info.BrandName)
}

func identityFromPayload(parsed identityPayload, fallbackName string) domain.BrandIdentity {
	identity := defaultIdentity(fallbackName)
	if parsed.BrandName != "" {
		identity.BrandName = parsed.BrandName
	}
	identity.BusinessType = domain.CoerceBusinessType(parsed.BusinessType)
	if len(parsed.PersonalityTraits) > 0 {
		identity.PersonalityTraits = parsed.PersonalityTraits
	}
	if len(parsed.CoreValues) > 0 {
		identity.CoreValues = parsed.CoreValues
	}
	if parsed.TargetAudience != "" {
		identity.TargetAudience = parsed.TargetAudience
	}
	if parsed.ToneDescription != "" {
		identity.ToneDescription = parsed.ToneDescription
	}
	return identity
}

func defaultIdentity(brandName string) domain.BrandIdentity {
	if brandName == "" {
		brandName = "Бренд"
	}
	return domain.BrandIdentity{
		BrandName:         brandName,
		BusinessType:      domain.BusinessTypeService,
		PersonalityTraits: []string{"дружелюбный", "надёжный"},
		CoreValues:        []string{"качество"},
		TargetAudience:    "широкая аудитория",
		ToneDescription:   "нейтральный разговорный тон",
	}
}

// buildTone — чистое отображение результата текстового агента.
func buildTone(text domain.TextAnalysis) domain.ToneOfVoice {
	return domain.ToneOfVoice{
		Formality:        text.FormalityScore,
		Warmth:           text.WarmthScore,
		Enthusiasm:       text.EnthusiasmScore,
		Description:      text.Tone,
		SignaturePhrases: text.SignaturePhrases,
		EmojiUsage:       text.EmojiUsage,
	}
}

// buildStrategy берёт топ ключевых слов как основные темы и переносит
// дескриптор стиля письма как структуру контента.
func (s *Service) buildStrategy(text domain.TextAnalysis, engagement domain.EngagementAnalysis) domain.ContentStrategy {
	return domain.ContentStrategy{
		PrimaryTopics:    topKeywords(text.KeywordFrequency, s.topKeywords),
		ContentStructure: text.WritingStyle,
		PostingPattern:   postingPattern(engagement),
	}
}

func buildVisual(visual domain.VisualAnalysis) domain.VisualStyle {
	return domain.VisualStyle{
		ColorPalette:     visual.ColorPalette,
		ImageStyle:       visual.ImageStyle,
		CompositionStyle: visual.CompositionStyle,
		VisualThemes:     visual.VisualThemes,
	}
}

// topKeywords возвращает ключи с наибольшей частотой; при равенстве
// порядок лексикографический, чтобы результат был детерминирован.
func topKeywords(frequency map[string]int, limit int) []string {
	keys := make([]string, 0, len(frequency))
	for key := range frequency {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if frequency[keys[i]] != frequency[keys[j]] {
			return frequency[keys[i]] > frequency[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func postingPattern(engagement domain.EngagementAnalysis) string {
	if !engagement.HasEngagementData {
		return "regular"
	}
	best := ""
	bestCount := 0
	for platform, acc := range engagement.ByPlatform {
		if acc.Contents > bestCount || (acc.Contents == bestCount && platform < best) {
			best = platform
			bestCount = acc.Contents
		}
	}
	if best == "" {
		return "regular"
	}
	return "основная активность: " + best
}

func assemble(brandID string, identity domain.BrandIdentity, tone domain.ToneOfVoice, strategy domain.ContentStrategy, visual domain.VisualStyle, prompts domain.GenerationPrompts, platforms []string, totalContents int) (domain.BrandProfile, error) {
	if brandID == "" {
		return domain.BrandProfile{}, errors.New("пустой идентификатор бренда")
	}
	if identity.BrandName == "" {
		return domain.BrandProfile{}, errors.New("пустое имя бренда")
	}
	return domain.BrandProfile{
		BrandID:               brandID,
		BrandName:             identity.BrandName,
		Identity:              identity,
		Tone:                  tone,
		Strategy:              strategy,
		Visual:                visual,
		Prompts:               prompts,
		AnalyzedPlatforms:     platforms,
		TotalContentsAnalyzed: totalContents,
		UpdatedAt:             time.Now().UTC(),
	}, nil
}

// sampleTexts берёт ограниченное число текстов для шага идентичности.
func sampleTexts(contents []domain.UnifiedContent, limit int) string {
	var b strings.Builder
	taken := 0
	for _, content := range contents {
		if taken >= limit {
			break
		}
		text := strings.TrimSpace(content.BodyText)
		if text == "" {
			text = strings.TrimSpace(content.Title)
		}
		if text == "" {
			continue
		}
		b.WriteString("---\n")
		if len([]rune(text)) > 400 {
			text = string([]rune(text)[:400])
		}
		b.WriteString(text)
		b.WriteString("\n")
		taken++
	}
	return strings.TrimSpace(b.String())
}
