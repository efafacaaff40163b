package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	CollectorItems = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collector_items_total",
		Help: "Количество собранных записей по платформам",
	}, []string{"platform"})

	CollectorErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collector_errors_total",
		Help: "Ошибки при сборе контента по платформам",
	}, []string{"platform"})

	PipelineRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_run_seconds",
		Help:    "Время полного прогона анализа бренда",
		Buckets: prometheus.DefBuckets,
	})

	AnalysisFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_fallbacks_total",
		Help: "Срабатывания записей по умолчанию у агентов анализа",
	}, []string{"agent"})

	ProfileRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "profile_requests_total",
		Help: "Общее количество запросов на построение профиля",
	})

	ProfileRequestsByBrand = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_requests_by_brand_total",
		Help: "Количество запросов на построение профиля по брендам",
	}, []string{"brand_id"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CollectorItems,
		CollectorErrors,
		PipelineRunSeconds,
		AnalysisFallbacks,
		ProfileRequestsTotal,
		ProfileRequestsByBrand,
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
	)
}

// ObserveNetworkRequest фиксирует длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
	}
	elapsed := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(elapsed)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration фиксирует длительность генерации и расход токенов.
func ObserveLLMGeneration(model string, elapsed time.Duration, promptTokens, completionTokens, totalTokens int) {
	LLMGenerationDuration.WithLabelValues(model).Observe(elapsed.Seconds())
	LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
}

// IncAnalysisFallback отмечает срабатывание дефолтной записи агента.
func IncAnalysisFallback(agent string) {
	AnalysisFallbacks.WithLabelValues(agent).Inc()
}

// IncProfileRequest отмечает запрос на построение профиля бренда.
func IncProfileRequest(brandID string) {
	ProfileRequestsTotal.Inc()
	if brandID != "" {
		ProfileRequestsByBrand.WithLabelValues(brandID).Inc()
	}
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("метрики: сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("метрики: сервер остановился с ошибкой")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("метрики: ошибка остановки сервера")
		}
	}()
}

// залейбленные значения нужны заранее, иначе первая выборка пустая
func init() {
	for _, platform := range []string{"blog", "instagram", "youtube", "telegram"} {
		CollectorItems.WithLabelValues(platform)
		CollectorErrors.WithLabelValues(platform)
	}
}
