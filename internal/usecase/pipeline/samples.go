package pipeline

import (
	"context"
	"fmt"
	"strings"

	"brand-profiler/internal/domain"
	"brand-profiler/internal/usecase/synthesis"
)

// PlatformManual — тег контента, собранного из пользовательских примеров.
const PlatformManual = "manual"

// ImageSample — пример изображения, загруженный пользователем.
type ImageSample struct {
	URL     string
	Caption string
}

// VideoSample — пример видео, загруженный пользователем.
type VideoSample struct {
	URL         string
	Title       string
	Description string
}

// SamplesRequest описывает прогон по пользовательским примерам.
type SamplesRequest struct {
	BrandID   string
	BrandName string
	Texts     []string
	Images    []ImageSample
	Videos    []VideoSample
}

// RunFromSamples выполняет путь по примерам: сбор и нормализация
// пропускаются, примеры конвертируются сразу в единую модель и идут
// через те же стадии анализа и синтеза. Происхождение —
// analyzed_from_samples, доверие — medium.
func (o *Orchestrator) RunFromSamples(ctx context.Context, req SamplesRequest) (domain.BrandProfile, error) {
	contents := convertSamples(req)
	if len(contents) == 0 {
		return domain.BrandProfile{}, fmt.Errorf("%w (бренд %s)", ErrNoContent, req.BrandID)
	}

	text, visual, engagement := o.analyzeAll(ctx, contents)

	profile, err := o.synthesizer.Synthesize(ctx, synthesis.Input{
		BrandID:    req.BrandID,
		BrandName:  req.BrandName,
		Text:       text,
		Visual:     visual,
		Engagement: engagement,
		Contents:   contents,
		Platforms:  []string{PlatformManual},
	})
	if err != nil {
		return domain.BrandProfile{}, fmt.Errorf("синтез профиля: %w", err)
	}
	profile.Source = domain.SourceAnalyzedFromSamples
	profile.ConfidenceLevel = domain.ConfidenceForSource(profile.Source)
	return profile, nil
}

// convertSamples строит UnifiedContent напрямую из примеров, соблюдая
// те же инварианты, что и нормализатор.
func convertSamples(req SamplesRequest) []domain.UnifiedContent {
	var contents []domain.UnifiedContent
	for _, text := range req.Texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		contents = append(contents, domain.UnifiedContent{
			Platform: PlatformManual,
			BodyText: text,
		})
	}
	for _, image := range req.Images {
		if strings.TrimSpace(image.URL) == "" {
			continue
		}
		contents = append(contents, domain.UnifiedContent{
			Platform: PlatformManual,
			BodyText: image.Caption,
			Media:    domain.NewMediaInfo(domain.MediaTypeImage, []string{image.URL}),
		})
	}
	for _, video := range req.Videos {
		if strings.TrimSpace(video.URL) == "" {
			continue
		}
		contents = append(contents, domain.UnifiedContent{
			Platform: PlatformManual,
			Title:    video.Title,
			BodyText: video.Description,
			Media:    domain.NewMediaInfo(domain.MediaTypeVideo, []string{video.URL}),
		})
	}
	return contents
}
