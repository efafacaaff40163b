// Package pipeline оркестрирует четыре стадии анализа бренда:
// сбор, нормализация, анализ, синтез.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/metrics"
	"brand-profiler/internal/usecase/normalize"
	"brand-profiler/internal/usecase/synthesis"
)

// ErrNoContent возвращается, когда ни один источник не вернул контент.
var ErrNoContent = errors.New("контент не собран: все источники вернули пусто")

// TextAnalyzer — агент текстового стиля.
type TextAnalyzer interface {
	Analyze(ctx context.Context, contents []domain.UnifiedContent) domain.TextAnalysis
}

// VisualAnalyzer — агент визуального стиля.
type VisualAnalyzer interface {
	Analyze(ctx context.Context, contents []domain.UnifiedContent) domain.VisualAnalysis
}

// EngagementAnalyzer — агент вовлечённости.
type EngagementAnalyzer interface {
	Analyze(ctx context.Context, contents []domain.UnifiedContent) domain.EngagementAnalysis
}

// Synthesizer собирает результаты анализа в профиль.
type Synthesizer interface {
	Synthesize(ctx context.Context, in synthesis.Input) (domain.BrandProfile, error)
}

// Request описывает прогон основного пути: источники по платформам.
type Request struct {
	BrandID      string
	BrandName    string
	Locators     map[string]string
	MaxPerSource int
}

// Orchestrator последовательно проводит четыре стадии, распараллеливая
// работу внутри стадий. Сбои источников и агентов изолированы, наружу
// выходят только две фатальные ошибки: пустой сбор и сбой сборки.
type Orchestrator struct {
	collectors  map[string]domain.Collector
	text        TextAnalyzer
	visual      VisualAnalyzer
	engagement  EngagementAnalyzer
	synthesizer Synthesizer
	log         zerolog.Logger
}

// NewOrchestrator создаёт оркестратор пайплайна.
func NewOrchestrator(collectors map[string]domain.Collector, text TextAnalyzer, visual VisualAnalyzer, engagement EngagementAnalyzer, synthesizer Synthesizer, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		collectors:  collectors,
		text:        text,
		visual:      visual,
		engagement:  engagement,
		synthesizer: synthesizer,
		log:         log,
	}
}

// Run выполняет основной путь: Collect → Normalize → Analyze → Synthesize.
// Результат штампуется происхождением analyzed_from_sns.
func (o *Orchestrator) Run(ctx context.Context, req Request) (domain.BrandProfile, error) {
	start := time.Now()
	defer func() {
		metrics.PipelineRunSeconds.Observe(time.Since(start).Seconds())
	}()
	metrics.IncProfileRequest(req.BrandID)

	platforms := requestedPlatforms(req.Locators, o.collectors)
	raws := o.collectAll(ctx, platforms, req.Locators, req.MaxPerSource)
	if len(raws) == 0 {
		return domain.BrandProfile{}, fmt.Errorf("%w (бренд %s)", ErrNoContent, req.BrandID)
	}

	contents := normalize.NormalizeAll(raws)
	// пустая коллекция после нормализации не фатальна: нормализация
	// тотальна, а агенты корректно работают на пустом входе

	text, visual, engagement := o.analyzeAll(ctx, contents)

	profile, err := o.synthesizer.Synthesize(ctx, synthesis.Input{
		BrandID:    req.BrandID,
		BrandName:  req.BrandName,
		Text:       text,
		Visual:     visual,
		Engagement: engagement,
		Contents:   contents,
		Platforms:  platforms,
	})
	if err != nil {
		return domain.BrandProfile{}, fmt.Errorf("синтез профиля: %w", err)
	}
	profile.Source = domain.SourceAnalyzedFromSNS
	profile.ConfidenceLevel = domain.ConfidenceForSource(profile.Source)
	return profile, nil
}

// collectAll запускает сбор по всем платформам параллельно и склеивает
// результаты в порядке запроса, а не в порядке завершения. Сбои не
// останавливают остальные источники.
func (o *Orchestrator) collectAll(ctx context.Context, platforms []string, locators map[string]string, maxPerSource int) []domain.RawRecord {
	results := make([][]domain.RawRecord, len(platforms))
	var wg sync.WaitGroup
	for i, platform := range platforms {
		wg.Add(1)
		go func(i int, platform string) {
			defer wg.Done()
			collector := o.collectors[platform]
			records := collector.Collect(ctx, locators[platform], maxPerSource)
			o.log.Debug().Str("platform", platform).Int("items", len(records)).Msg("пайплайн: сбор завершён")
			results[i] = records
		}(i, platform)
	}
	wg.Wait()

	var merged []domain.RawRecord
	for _, records := range results {
		merged = append(merged, records...)
	}
	return merged
}

// analyzeAll запускает трёх агентов над одной коллекцией параллельно.
// Каждый агент работает на неизменяемом входе и возвращает свежую
// запись, поэтому блокировки не нужны.
func (o *Orchestrator) analyzeAll(ctx context.Context, contents []domain.UnifiedContent) (domain.TextAnalysis, domain.VisualAnalysis, domain.EngagementAnalysis) {
	var (
		text       domain.TextAnalysis
		visual     domain.VisualAnalysis
		engagement domain.EngagementAnalysis
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		text = o.text.Analyze(ctx, contents)
	}()
	go func() {
		defer wg.Done()
		visual = o.visual.Analyze(ctx, contents)
	}()
	go func() {
		defer wg.Done()
		engagement = o.engagement.Analyze(ctx, contents)
	}()
	wg.Wait()
	return text, visual, engagement
}

// requestedPlatforms возвращает платформы запроса, для которых есть
// сборщик, в детерминированном порядке.
func requestedPlatforms(locators map[string]string, collectors map[string]domain.Collector) []string {
	platforms := make([]string, 0, len(locators))
	for platform := range locators {
		if _, ok := collectors[platform]; ok {
			platforms = append(platforms, platform)
		}
	}
	sort.Strings(platforms)
	return platforms
}
