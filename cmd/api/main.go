package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"brand-profiler/internal/adapters/extractor"
	"brand-profiler/internal/adapters/repo"
	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/cache"
	"brand-profiler/internal/infra/config"
	"brand-profiler/internal/infra/db"
	httpinfra "brand-profiler/internal/infra/http"
	applog "brand-profiler/internal/infra/log"
	"brand-profiler/internal/infra/metrics"
	"brand-profiler/internal/infra/openai"
	"brand-profiler/internal/infra/queue"
	"brand-profiler/internal/usecase/analyze"
	"brand-profiler/internal/usecase/pipeline"
	"brand-profiler/internal/usecase/synthesis"
)

const profileCacheTTL = 10 * time.Minute

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()
	brandRepo := repo.NewPostgres(pool)

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("api: не указан адрес Redis (REDIS_ADDR)")
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	profileCache := cache.NewRedis(redisClient)
	analyzeQueue := queue.NewRedisAnalyzeQueue(redisClient, cfg.Queues.Analyze)

	if cfg.OpenAI.APIKey == "" {
		logger.Fatal().Msg("api: не указан ключ OpenAI (OPENAI_API_KEY)")
	}
	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
	llm := extractor.NewOpenAI(openaiClient, cfg.OpenAI.Model, cfg.OpenAI.Timeout)

	synthesizer := synthesis.NewService(llm, logger.With().Str("component", "synthesis").Logger(), cfg.Limits.TopKeywords, cfg.Limits.IdentitySamples)
	orchestrator := pipeline.NewOrchestrator(
		nil, // путь по примерам не использует сборщиков
		analyze.NewTextAgent(llm, logger.With().Str("component", "text_agent").Logger()),
		analyze.NewVisualAgent(llm, logger.With().Str("component", "visual_agent").Logger()),
		analyze.NewEngagementAgent(),
		synthesizer,
		logger.With().Str("component", "pipeline").Logger(),
	)

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	server.Router.Group(func(protected chi.Router) {
		protected.Use(httpinfra.TokenAuthMiddleware(cfg.APIToken))

		protected.Post("/api/v1/brands/{brandID}/analyze", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			brandID := chi.URLParam(r, "brandID")
			var req analyzeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if len(req.Locators) == 0 {
				writeError(w, http.StatusBadRequest, "locators are required")
				return
			}
			maxPerSource := req.MaxPerSource
			if maxPerSource <= 0 {
				maxPerSource = cfg.Limits.MaxPerSource
			}
			job := domain.AnalyzeJob{
				ID:           uuid.NewString(),
				BrandID:      brandID,
				BrandName:    req.BrandName,
				Locators:     req.Locators,
				MaxPerSource: maxPerSource,
				RequestedAt:  time.Now().UTC(),
				Cause:        domain.AnalyzeCauseManual,
			}
			if err := analyzeQueue.Enqueue(r.Context(), job); err != nil {
				logger.Error().Err(err).Str("brand_id", brandID).Msg("api: не удалось поставить задачу")
				writeError(w, http.StatusInternalServerError, "enqueue failed")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(map[string]string{"job_id": job.ID})
		})

		protected.Post("/api/v1/brands/{brandID}/analyze/samples", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			brandID := chi.URLParam(r, "brandID")
			var req samplesRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			profile, err := orchestrator.RunFromSamples(r.Context(), pipeline.SamplesRequest{
				BrandID:   brandID,
				BrandName: req.BrandName,
				Texts:     req.Texts,
				Images:    toImageSamples(req.Images),
				Videos:    toVideoSamples(req.Videos),
			})
			if errors.Is(err, pipeline.ErrNoContent) {
				writeError(w, http.StatusBadRequest, "samples are empty")
				return
			}
			if err != nil {
				logger.Error().Err(err).Str("brand_id", brandID).Msg("api: анализ по примерам не удался")
				writeError(w, http.StatusInternalServerError, "analysis failed")
				return
			}
			if err := brandRepo.SaveProfile(r.Context(), profile); err != nil {
				logger.Error().Err(err).Str("brand_id", brandID).Msg("api: профиль не сохранён")
			}
			writeJSON(w, profile)
		})

		protected.Post("/api/v1/brands/{brandID}/profile/business-info", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			brandID := chi.URLParam(r, "brandID")
			var info domain.BusinessInfo
			if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			info.BrandID = brandID
			profile, err := synthesizer.SynthesizeFromBusinessInfo(r.Context(), info)
			if err != nil {
				logger.Error().Err(err).Str("brand_id", brandID).Msg("api: профиль из анкеты не построен")
				writeError(w, http.StatusInternalServerError, "synthesis failed")
				return
			}
			if err := brandRepo.SaveProfile(r.Context(), profile); err != nil {
				logger.Error().Err(err).Str("brand_id", brandID).Msg("api: профиль не сохранён")
			}
			writeJSON(w, profile)
		})

		protected.Get("/api/v1/brands/{brandID}/profile", func(w http.ResponseWriter, r *http.Request) {
			brandID := chi.URLParam(r, "brandID")
			cacheKey := "profile:" + brandID
			if cached, err := profileCache.Get(cacheKey); err == nil && len(cached) > 0 {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(cached)
				return
			}
			profile, err := brandRepo.GetProfile(r.Context(), brandID)
			if errors.Is(err, repo.ErrProfileNotFound) {
				writeError(w, http.StatusNotFound, "profile not found")
				return
			}
			if err != nil {
				logger.Error().Err(err).Str("brand_id", brandID).Msg("api: чтение профиля не удалось")
				writeError(w, http.StatusInternalServerError, "profile read failed")
				return
			}
			if payload, err := json.Marshal(profile); err == nil {
				_ = profileCache.Set(cacheKey, payload, profileCacheTTL)
			}
			writeJSON(w, profile)
		})
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("api: сервер остановился с ошибкой")
	}
}

type analyzeRequest struct {
	BrandName    string            `json:"brand_name"`
	Locators     map[string]string `json:"locators"`
	MaxPerSource int               `json:"max_per_source"`
}

type sampleImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type sampleVideo struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type samplesRequest struct {
	BrandName string        `json:"brand_name"`
	Texts     []string      `json:"texts"`
	Images    []sampleImage `json:"images"`
	Videos    []sampleVideo `json:"videos"`
}

func toImageSamples(images []sampleImage) []pipeline.ImageSample {
	out := make([]pipeline.ImageSample, 0, len(images))
	for _, image := range images {
		out = append(out, pipeline.ImageSample{URL: image.URL, Caption: image.Caption})
	}
	return out
}

func toVideoSamples(videos []sampleVideo) []pipeline.VideoSample {
	out := make([]pipeline.VideoSample, 0, len(videos))
	for _, video := range videos {
		out = append(out, pipeline.VideoSample{URL: video.URL, Title: video.Title, Description: video.Description})
	}
	return out
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
