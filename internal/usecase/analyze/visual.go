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

const visualSummaryLimit = 30

// VisualAgent выводит визуальный стиль бренда. Анализ идёт по
// метаданным и подписям, а не по пикселям.
type VisualAgent struct {
	extractor domain.Extractor
	log       zerolog.Logger
}

// NewVisualAgent создаёт агента визуального стиля.
func NewVisualAgent(extractor domain.Extractor, log zerolog.Logger) *VisualAgent {
	return &VisualAgent{extractor: extractor, log: log}
}

type visualStylePayload struct {
	ColorPalette     []string `json:"color_palette"`
	ImageStyle       string   `json:"image_style"`
	CompositionStyle string   `json:"composition_style"`
	VisualThemes     []string `json:"visual_themes"`
}

// Analyze строит профиль визуального стиля. Если медиа нет вовсе,
// стиль выводится из текстов — это явный путь пониженного доверия
// с has_visual_content=false.
func (a *VisualAgent) Analyze(ctx context.Context, contents []domain.UnifiedContent) domain.VisualAnalysis {
	withMedia := filterWithMedia(contents)

	var prompt string
	hasVisual := len(withMedia) > 0
	if hasVisual {
		prompt = fmt.Sprintf(`По метаданным медиа-публикаций бренда выведи его визуальный стиль.
Верни строго JSON формата:
{"color_palette": ["#RRGGBB", ...], "image_style": "...", "composition_style": "...", "visual_themes": ["..."]}
Палитра — 3-5 правдоподобных цветов в hex.

Медиа-публикации:
%s`, summarizeMedia(withMedia))
	} else {
		corpus := buildCorpus(contents)
		if corpus == "" {
			metrics.IncAnalysisFallback("visual")
			return domain.DefaultVisualAnalysis()
		}
		prompt = fmt.Sprintf(`У бренда нет медиа-публикаций. По текстам публикаций предположи правдоподобный визуальный стиль.
Верни строго JSON формата:
{"color_palette": ["#RRGGBB", ...], "image_style": "...", "composition_style": "...", "visual_themes": ["..."]}

Тексты публикаций:
%s`, corpus)
	}

	raw, err := a.extractor.GenerateStructured(ctx, prompt, 0.3)
	if err != nil {
		metrics.IncAnalysisFallback("visual")
		a.log.Warn().Err(err).Msg("визуальный агент: сбой извлечения, запись по умолчанию")
		return domain.DefaultVisualAnalysis()
	}
	var parsed visualStylePayload
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.IncAnalysisFallback("visual")
		a.log.Warn().Err(err).Msg("визуальный агент: невалидный ответ, запись по умолчанию")
		return domain.DefaultVisualAnalysis()
	}

	result := domain.DefaultVisualAnalysis()
	result.HasVisualContent = hasVisual
	if len(parsed.ColorPalette) > 0 {
		result.ColorPalette = filterNonEmpty(parsed.ColorPalette)
	}
	if parsed.ImageStyle != "" {
		result.ImageStyle = parsed.ImageStyle
	}
	if parsed.CompositionStyle != "" {
		result.CompositionStyle = parsed.CompositionStyle
	}
	if len(parsed.VisualThemes) > 0 {
		result.VisualThemes = filterNonEmpty(parsed.VisualThemes)
	}
	return result
}

func filterWithMedia(contents []domain.UnifiedContent) []domain.UnifiedContent {
	out := make([]domain.UnifiedContent, 0, len(contents))
	for _, content := range contents {
		if content.HasMedia() {
			out = append(out, content)
		}
	}
	return out
}

// summarizeMedia описывает каждую медиа-публикацию одной строкой:
// платформа, тип, количество вложений, фрагмент подписи.
func summarizeMedia(contents []domain.UnifiedContent) string {
	var b strings.Builder
	for i, content := range contents {
		if i >= visualSummaryLimit {
			break
		}
		caption := content.BodyText
		if caption == "" {
			caption = content.Title
		}
		b.WriteString(fmt.Sprintf("- платформа=%s тип=%s вложений=%d подпись=%q\n",
			content.Platform, content.Media.Type, content.Media.Count, clipRunes(caption, 120)))
	}
	return strings.TrimSpace(b.String())
}
