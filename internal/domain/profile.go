package domain

import "time"

// ProfileSource описывает происхождение бренд-профиля.
type ProfileSource string

const (
	// SourceInferredFromBusinessInfo — профиль выведен из анкеты бизнеса.
	SourceInferredFromBusinessInfo ProfileSource = "inferred_from_business_info"
	// SourceAnalyzedFromSNS — профиль построен по контенту соцсетей.
	SourceAnalyzedFromSNS ProfileSource = "analyzed_from_sns"
	// SourceAnalyzedFromSamples — профиль построен по примерам пользователя.
	SourceAnalyzedFromSamples ProfileSource = "analyzed_from_samples"
	// SourceUserEdited — профиль отредактирован пользователем вручную.
	SourceUserEdited ProfileSource = "user_edited"
)

// ConfidenceLevel — уровень доверия к профилю.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ConfidenceForSource возвращает уровень доверия, соответствующий
// происхождению профиля. Для user_edited уровень задаёт сама правка,
// по умолчанию возвращается high.
func ConfidenceForSource(source ProfileSource) ConfidenceLevel {
	switch source {
	case SourceInferredFromBusinessInfo:
		return ConfidenceLow
	case SourceAnalyzedFromSamples:
		return ConfidenceMedium
	case SourceAnalyzedFromSNS:
		return ConfidenceHigh
	default:
		return ConfidenceHigh
	}
}

// Закрытый словарь типов бизнеса. Всё нераспознанное приводится к service.
const (
	BusinessTypeFood      = "food"
	BusinessTypeFashion   = "fashion"
	BusinessTypeHealth    = "health"
	BusinessTypeEducation = "education"
	BusinessTypeTech      = "tech"
	BusinessTypeRetail    = "retail"
	BusinessTypeService   = "service"
)

// KnownBusinessTypes перечисляет допустимые значения business_type.
var KnownBusinessTypes = []string{
	BusinessTypeFood,
	BusinessTypeFashion,
	BusinessTypeHealth,
	BusinessTypeEducation,
	BusinessTypeTech,
	BusinessTypeRetail,
	BusinessTypeService,
}

// CoerceBusinessType приводит значение к закрытому словарю.
func CoerceBusinessType(value string) string {
	for _, known := range KnownBusinessTypes {
		if value == known {
			return value
		}
	}
	return BusinessTypeService
}

// BrandIdentity описывает идентичность бренда.
type BrandIdentity struct {
	BrandName         string   `json:"brand_name"`
	BusinessType      string   `json:"business_type"`
	PersonalityTraits []string `json:"personality_traits"`
	CoreValues        []string `json:"core_values"`
	TargetAudience    string   `json:"target_audience"`
	ToneDescription   string   `json:"tone_description"`
}

// ToneOfVoice описывает голос бренда.
type ToneOfVoice struct {
	Formality        int      `json:"formality"`
	Warmth           int      `json:"warmth"`
	Enthusiasm       int      `json:"enthusiasm"`
	Description      string   `json:"description"`
	SignaturePhrases []string `json:"signature_phrases"`
	EmojiUsage       string   `json:"emoji_usage"`
}

// ContentStrategy описывает контентную стратегию.
type ContentStrategy struct {
	PrimaryTopics    []string `json:"primary_topics"`
	ContentStructure string   `json:"content_structure"`
	PostingPattern   string   `json:"posting_pattern"`
}

// VisualStyle описывает визуальный стиль бренда.
type VisualStyle struct {
	ColorPalette     []string `json:"color_palette"`
	ImageStyle       string   `json:"image_style"`
	CompositionStyle string   `json:"composition_style"`
	VisualThemes     []string `json:"visual_themes"`
}

// GenerationPrompts — готовые шаблоны промптов для генерации контента.
type GenerationPrompts struct {
	TextPrompt  string `json:"text_prompt"`
	ImagePrompt string `json:"image_prompt"`
	VideoPrompt string `json:"video_prompt,omitempty"`
}

// BrandProfile — корневой агрегат анализа бренда. После возврата из
// синтеза трактуется как значение и не мутируется по частям.
type BrandProfile struct {
	BrandID               string            `json:"brand_id"`
	BrandName             string            `json:"brand_name"`
	Identity              BrandIdentity     `json:"identity"`
	Tone                  ToneOfVoice       `json:"tone_of_voice"`
	Strategy              ContentStrategy   `json:"content_strategy"`
	Visual                VisualStyle       `json:"visual_style"`
	Prompts               GenerationPrompts `json:"generation_prompts"`
	AnalyzedPlatforms     []string          `json:"analyzed_platforms"`
	TotalContentsAnalyzed int               `json:"total_contents_analyzed"`
	Source                ProfileSource     `json:"source"`
	ConfidenceLevel       ConfidenceLevel   `json:"confidence_level"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// BusinessInfo — анкета бизнеса для построения профиля без сбора соцсетей.
type BusinessInfo struct {
	BrandID      string   `json:"brand_id"`
	BrandName    string   `json:"brand_name"`
	BusinessType string   `json:"business_type"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
}
