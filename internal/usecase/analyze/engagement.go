package analyze

import (
	"context"

	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/metrics"
)

// EngagementAgent считает детерминированные агрегаты по реакциям.
// Генеративный сервис не используется — только арифметика.
type EngagementAgent struct{}

// NewEngagementAgent создаёт агента вовлечённости.
func NewEngagementAgent() *EngagementAgent {
	return &EngagementAgent{}
}

// Analyze агрегирует реакции по коллекции. Записи без метрик
// пропускаются; если таких нет вовсе — has_engagement_data=false.
// Средняя вовлечённость — аддитивная прокси: avg_likes + avg_comments.
func (a *EngagementAgent) Analyze(_ context.Context, contents []domain.UnifiedContent) domain.EngagementAnalysis {
	type platformAcc struct {
		contents int
		likes    int64
		comments int64
	}

	var totalLikes, totalComments int64
	measured := 0
	perPlatform := make(map[string]*platformAcc)

	for _, content := range contents {
		if content.Engagement == nil {
			continue
		}
		measured++
		totalLikes += content.Engagement.Likes
		totalComments += content.Engagement.Comments

		acc := perPlatform[content.Platform]
		if acc == nil {
			acc = &platformAcc{}
			perPlatform[content.Platform] = acc
		}
		acc.contents++
		acc.likes += content.Engagement.Likes
		acc.comments += content.Engagement.Comments
	}

	if measured == 0 {
		metrics.IncAnalysisFallback("engagement")
		return domain.DefaultEngagementAnalysis()
	}

	avgLikes := float64(totalLikes) / float64(measured)
	avgComments := float64(totalComments) / float64(measured)

	byPlatform := make(map[string]domain.PlatformEngagement, len(perPlatform))
	for platform, acc := range perPlatform {
		byPlatform[platform] = domain.PlatformEngagement{
			Contents:    acc.contents,
			AvgLikes:    float64(acc.likes) / float64(acc.contents),
			AvgComments: float64(acc.comments) / float64(acc.contents),
		}
	}

	return domain.EngagementAnalysis{
		HasEngagementData: true,
		TotalLikes:        totalLikes,
		TotalComments:     totalComments,
		AvgLikes:          avgLikes,
		AvgComments:       avgComments,
		AvgEngagementRate: avgLikes + avgComments,
		ByPlatform:        byPlatform,
	}
}
