// Package analyze содержит трёх независимых агентов анализа контента.
// Каждый агент устойчив к сбоям: на пустом входе или при отказе
// сервиса извлечения возвращается фиксированная запись по умолчанию,
// чтобы сбой одного агента не блокировал остальных.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/metrics"
)

const (
	perItemTextLimit = 500
	corpusTextLimit  = 8000
)

// TextAgent извлекает профиль текстового стиля через LLM.
type TextAgent struct {
	extractor domain.Extractor
	log       zerolog.Logger
}

// NewTextAgent создаёт агента текстового стиля.
func NewTextAgent(extractor domain.Extractor, log zerolog.Logger) *TextAgent {
	return &TextAgent{extractor: extractor, log: log}
}

type textStylePayload struct {
	WritingStyle     string         `json:"writing_style"`
	Tone             string         `json:"tone"`
	FormalityScore   int            `json:"formality_score"`
	WarmthScore      int            `json:"warmth_score"`
	EnthusiasmScore  int            `json:"enthusiasm_score"`
	SignaturePhrases []string       `json:"signature_phrases"`
	EmojiUsage       string         `json:"emoji_usage"`
	KeywordFrequency map[string]int `json:"keyword_frequency"`
}

// Analyze строит профиль текстового стиля по всей коллекции.
// Оценки 0-100 оцениваются моделью, а не вычисляются.
func (a *TextAgent) Analyze(ctx context.Context, contents []domain.UnifiedContent) domain.TextAnalysis {
	corpus := buildCorpus(contents)
	if corpus == "" {
		metrics.IncAnalysisFallback("text")
		return domain.DefaultTextAnalysis()
	}

	prompt := fmt.Sprintf(`Проанализируй тексты публикаций бренда и опиши его текстовый стиль.
Верни строго JSON формата:
{"writing_style": "...", "tone": "...", "formality_score": 0-100, "warmth_score": 0-100, "enthusiasm_score": 0-100, "signature_phrases": ["..."], "emoji_usage": "none|rare|moderate|heavy", "keyword_frequency": {"слово": число}}
Оценки formality/warmth/enthusiasm — целые от 0 до 100.
В keyword_frequency включи до 15 характерных слов с частотой появления.

Тексты публикаций:
%s`, corpus)

	raw, err := a.extractor.GenerateStructured(ctx, prompt, 0.2)
	if err != nil {
		metrics.IncAnalysisFallback("text")
		a.log.Warn().Err(err).Msg("текстовый агент: сбой извлечения, запись по умолчанию")
		return domain.DefaultTextAnalysis()
	}
	var parsed textStylePayload
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.IncAnalysisFallback("text")
		a.log.Warn().Err(err).Msg("текстовый агент: невалидный ответ, запись по умолчанию")
		return domain.DefaultTextAnalysis()
	}

	result := domain.DefaultTextAnalysis()
	if parsed.WritingStyle != "" {
		result.WritingStyle = parsed.WritingStyle
	}
	if parsed.Tone != "" {
		result.Tone = parsed.Tone
	}
	result.FormalityScore = clampScore(parsed.FormalityScore)
	result.WarmthScore = clampScore(parsed.WarmthScore)
	result.EnthusiasmScore = clampScore(parsed.EnthusiasmScore)
	if len(parsed.SignaturePhrases) > 0 {
		result.SignaturePhrases = filterNonEmpty(parsed.SignaturePhrases)
	}
	if parsed.EmojiUsage != "" {
		result.EmojiUsage = parsed.EmojiUsage
	}
	if len(parsed.KeywordFrequency) > 0 {
		result.KeywordFrequency = parsed.KeywordFrequency
	}
	return result
}

// buildCorpus склеивает заголовки и тексты с пообъектным и общим лимитом.
func buildCorpus(contents []domain.UnifiedContent) string {
	var b strings.Builder
	for _, content := range contents {
		var piece string
		switch {
		case content.Title != "" && content.BodyText != "":
			piece = content.Title + "\n" + content.BodyText
		case content.Title != "":
			piece = content.Title
		default:
			piece = content.BodyText
		}
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		b.WriteString("---\n")
		b.WriteString(clipRunes(piece, perItemTextLimit))
		b.WriteString("\n")
		if b.Len() >= corpusTextLimit*4 {
			break
		}
	}
	return clipRunes(strings.TrimSpace(b.String()), corpusTextLimit)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func filterNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
