package domain

// TextAnalysis — результат анализа текстового стиля.
type TextAnalysis struct {
	WritingStyle     string         `json:"writing_style"`
	Tone             string         `json:"tone"`
	FormalityScore   int            `json:"formality_score"`
	WarmthScore      int            `json:"warmth_score"`
	EnthusiasmScore  int            `json:"enthusiasm_score"`
	SignaturePhrases []string       `json:"signature_phrases"`
	EmojiUsage       string         `json:"emoji_usage"`
	KeywordFrequency map[string]int `json:"keyword_frequency"`
}

// DefaultTextAnalysis возвращает запись по умолчанию: нейтральный
// разговорный стиль, средние оценки, пустые списки.
func DefaultTextAnalysis() TextAnalysis {
	return TextAnalysis{
		WritingStyle:     "conversational",
		Tone:             "neutral",
		FormalityScore:   50,
		WarmthScore:      50,
		EnthusiasmScore:  50,
		SignaturePhrases: []string{},
		EmojiUsage:       "none",
		KeywordFrequency: map[string]int{},
	}
}

// VisualAnalysis — результат анализа визуального стиля.
type VisualAnalysis struct {
	HasVisualContent bool     `json:"has_visual_content"`
	ColorPalette     []string `json:"color_palette"`
	ImageStyle       string   `json:"image_style"`
	CompositionStyle string   `json:"composition_style"`
	VisualThemes     []string `json:"visual_themes"`
}

// DefaultVisualAnalysis возвращает запись по умолчанию без визуального контента.
func DefaultVisualAnalysis() VisualAnalysis {
	return VisualAnalysis{
		HasVisualContent: false,
		ColorPalette:     []string{},
		ImageStyle:       "clean",
		CompositionStyle: "simple",
		VisualThemes:     []string{},
	}
}

// PlatformEngagement — агрегаты вовлечённости по одной платформе.
type PlatformEngagement struct {
	Contents    int     `json:"contents"`
	AvgLikes    float64 `json:"avg_likes"`
	AvgComments float64 `json:"avg_comments"`
}

// EngagementAnalysis — детерминированные агрегаты по реакциям.
// AvgEngagementRate считается как AvgLikes + AvgComments: простая
// аддитивная прокси-метрика, не нормированная на размер аудитории.
type EngagementAnalysis struct {
	HasEngagementData bool                          `json:"has_engagement_data"`
	TotalLikes        int64                         `json:"total_likes"`
	TotalComments     int64                         `json:"total_comments"`
	AvgLikes          float64                       `json:"avg_likes"`
	AvgComments       float64                       `json:"avg_comments"`
	AvgEngagementRate float64                       `json:"avg_engagement_rate"`
	ByPlatform        map[string]PlatformEngagement `json:"by_platform"`
}

// DefaultEngagementAnalysis возвращает запись по умолчанию: данных нет, нули.
func DefaultEngagementAnalysis() EngagementAnalysis {
	return EngagementAnalysis{
		HasEngagementData: false,
		ByPlatform:        map[string]PlatformEngagement{},
	}
}
