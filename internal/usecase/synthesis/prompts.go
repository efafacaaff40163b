package synthesis

import (
	"fmt"
	"strings"

	"brand-profiler/internal/domain"
)

// RenderPrompts рендерит шаблоны генерации детерминированно, без
// обращения к LLM: поля профиля подставляются в два фиксированных
// шаблона. Видео-шаблон по умолчанию не заполняется.
func RenderPrompts(identity domain.BrandIdentity, tone domain.ToneOfVoice, strategy domain.ContentStrategy, visual domain.VisualStyle) domain.GenerationPrompts {
	textPrompt := fmt.Sprintf(
		`Пиши от имени бренда «%s» (%s). Аудитория: %s. Тон: %s (формальность %d/100, теплота %d/100, энтузиазм %d/100). Основные темы: %s. Структура текста: %s. Использование эмодзи: %s.`,
		identity.BrandName,
		identity.BusinessType,
		identity.TargetAudience,
		tone.Description,
		tone.Formality,
		tone.Warmth,
		tone.Enthusiasm,
		joinOrDash(strategy.PrimaryTopics),
		strategy.ContentStructure,
		tone.EmojiUsage,
	)

	imagePrompt := fmt.Sprintf(
		`Изображение для бренда «%s»: стиль %s, композиция %s, палитра %s, темы %s.`,
		identity.BrandName,
		visual.ImageStyle,
		visual.CompositionStyle,
		joinOrDash(visual.ColorPalette),
		joinOrDash(visual.VisualThemes),
	)

	return domain.GenerationPrompts{
		TextPrompt:  textPrompt,
		ImagePrompt: imagePrompt,
	}
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "—"
	}
	return strings.Join(values, ", ")
}
