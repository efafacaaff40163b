package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"brand-profiler/internal/adapters/collector"
	"brand-profiler/internal/adapters/extractor"
	"brand-profiler/internal/adapters/notify"
	"brand-profiler/internal/adapters/repo"
	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/cache"
	"brand-profiler/internal/infra/config"
	"brand-profiler/internal/infra/db"
	applog "brand-profiler/internal/infra/log"
	"brand-profiler/internal/infra/metrics"
	"brand-profiler/internal/infra/openai"
	"brand-profiler/internal/infra/queue"
	"brand-profiler/internal/usecase/analyze"
	"brand-profiler/internal/usecase/pipeline"
	"brand-profiler/internal/usecase/synthesis"
)

const analyzeOnceTTL = 5 * time.Minute

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("analyzer: нет подключения к БД")
	}
	defer pool.Close()
	brandRepo := repo.NewPostgres(pool)

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("analyzer: не указан адрес Redis (REDIS_ADDR)")
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	onceCache := cache.NewRedis(redisClient)

	var analyzeQueue domain.AnalyzeQueue
	if cfg.RabbitURL != "" {
		rabbitQueue, err := queue.NewRabbitAnalyzeQueue(cfg.RabbitURL, cfg.Queues.Analyze)
		if err != nil {
			logger.Fatal().Err(err).Msg("analyzer: не удалось инициализировать очередь RabbitMQ")
		}
		defer rabbitQueue.Close()
		analyzeQueue = rabbitQueue
	} else {
		analyzeQueue = queue.NewRedisAnalyzeQueue(redisClient, cfg.Queues.Analyze)
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Fatal().Msg("analyzer: не указан ключ OpenAI (OPENAI_API_KEY)")
	}
	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
	llm := extractor.NewOpenAI(openaiClient, cfg.OpenAI.Model, cfg.OpenAI.Timeout)

	collectors := buildCollectors(cfg, logger)
	if len(collectors) == 0 {
		logger.Fatal().Msg("analyzer: не настроен ни один сборщик платформ")
	}

	synthesizer := synthesis.NewService(llm, logger.With().Str("component", "synthesis").Logger(), cfg.Limits.TopKeywords, cfg.Limits.IdentitySamples)
	orchestrator := pipeline.NewOrchestrator(
		collectors,
		analyze.NewTextAgent(llm, logger.With().Str("component", "text_agent").Logger()),
		analyze.NewVisualAgent(llm, logger.With().Str("component", "visual_agent").Logger()),
		analyze.NewEngagementAgent(),
		synthesizer,
		logger.With().Str("component", "pipeline").Logger(),
	)

	var notifier domain.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.OperatorChat != 0 {
		notifier, err = notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.OperatorChat, logger.With().Str("component", "notify").Logger())
		if err != nil {
			logger.Fatal().Err(err).Msg("analyzer: не удалось создать нотификатор")
		}
	}

	logger.Info().Msg("analyzer: воркер запущен")
	for {
		job, ack, err := analyzeQueue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error().Err(err).Msg("analyzer: ошибка чтения очереди")
			continue
		}
		processJob(ctx, job, ack, orchestrator, brandRepo, onceCache, notifier, logger)
	}
}

func processJob(ctx context.Context, job domain.AnalyzeJob, ack domain.AnalyzeAckFunc, orchestrator *pipeline.Orchestrator, brandRepo *repo.Postgres, onceCache domain.Cache, notifier domain.Notifier, logger zerolog.Logger) {
	log := logger.With().Str("job_id", job.ID).Str("brand_id", job.BrandID).Logger()

	err := onceCache.Once("analyze:"+job.BrandID, analyzeOnceTTL, func() error {
		profile, err := orchestrator.Run(ctx, pipeline.Request{
			BrandID:      job.BrandID,
			BrandName:    job.BrandName,
			Locators:     job.Locators,
			MaxPerSource: job.MaxPerSource,
		})
		if err != nil {
			return err
		}
		if err := brandRepo.SaveProfile(ctx, profile); err != nil {
			return err
		}
		if notifier != nil {
			if err := notifier.NotifyProfileReady(ctx, profile); err != nil {
				log.Warn().Err(err).Msg("analyzer: уведомление не отправлено")
			}
		}
		return nil
	})

	status := "done"
	if err != nil {
		status = "failed"
		log.Error().Err(err).Msg("analyzer: прогон не удался")
	}
	if recErr := brandRepo.RecordJobStatus(ctx, job.ID, job.BrandID, status); recErr != nil {
		log.Warn().Err(recErr).Msg("analyzer: статус задачи не записан")
	}
	// фатальный прогон не возвращаем в очередь: повтор даст тот же результат
	if ackErr := ack(true); ackErr != nil {
		log.Warn().Err(ackErr).Msg("analyzer: подтверждение не отправлено")
	}
}

// buildCollectors собирает реестр сборщиков по настроенным платформам.
func buildCollectors(cfg config.AppConfig, logger zerolog.Logger) map[string]domain.Collector {
	collectors := make(map[string]domain.Collector)
	if cfg.Blog.BaseURL != "" {
		collectors[domain.PlatformBlog] = collector.NewBlog(cfg.Blog.BaseURL, cfg.Blog.Timeout, logger.With().Str("component", "blog_collector").Logger())
	}
	if cfg.Instagram.AccessToken != "" {
		collectors[domain.PlatformInstagram] = collector.NewInstagram(cfg.Instagram.BaseURL, cfg.Instagram.AccessToken, cfg.Instagram.Timeout, logger.With().Str("component", "instagram_collector").Logger())
	}
	if cfg.YouTube.APIKey != "" {
		collectors[domain.PlatformYouTube] = collector.NewYouTube(cfg.YouTube.BaseURL, cfg.YouTube.APIKey, cfg.YouTube.Timeout, logger.With().Str("component", "youtube_collector").Logger())
	}
	if cfg.Telegram.APIID != 0 && cfg.Telegram.APIHash != "" && cfg.Telegram.SessionFile != "" {
		collectors[domain.PlatformTelegram] = collector.NewTelegram(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.Telegram.SessionFile, logger.With().Str("component", "telegram_collector").Logger())
	}
	return collectors
}
