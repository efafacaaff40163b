package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"Europe/Amsterdam"`
	Port   int    `envconfig:"PORT" default:"8080"`

	APIToken string `envconfig:"API_TOKEN"`

	OpenAI struct {
		APIKey  string        `envconfig:"OPENAI_API_KEY"`
		BaseURL string        `envconfig:"OPENAI_BASE_URL"`
		Model   string        `envconfig:"OPENAI_MODEL" default:"gpt-4.1-mini"`
		Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
	} `envconfig:""`

	Blog struct {
		BaseURL string        `envconfig:"BLOG_API_URL"`
		Timeout time.Duration `envconfig:"BLOG_TIMEOUT" default:"15s"`
	} `envconfig:""`

	Instagram struct {
		AccessToken string        `envconfig:"IG_ACCESS_TOKEN"`
		BaseURL     string        `envconfig:"IG_API_URL" default:"https://graph.instagram.com"`
		Timeout     time.Duration `envconfig:"IG_TIMEOUT" default:"15s"`
	} `envconfig:""`

	YouTube struct {
		APIKey  string        `envconfig:"YT_API_KEY"`
		BaseURL string        `envconfig:"YT_API_URL" default:"https://www.googleapis.com/youtube/v3"`
		Timeout time.Duration `envconfig:"YT_TIMEOUT" default:"15s"`
	} `envconfig:""`

	Telegram struct {
		BotToken     string `envconfig:"TG_BOT_TOKEN"`
		OperatorChat int64  `envconfig:"TG_OPERATOR_CHAT"`
		APIID        int    `envconfig:"TG_API_ID"`
		APIHash      string `envconfig:"TG_API_HASH"`
		SessionFile  string `envconfig:"MTPROTO_SESSION_FILE"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	RabbitURL string `envconfig:"RABBITMQ_URL"`

	Limits struct {
		MaxPerSource    int `envconfig:"MAX_ITEMS_PER_SOURCE" default:"30"`
		TopKeywords     int `envconfig:"PROFILE_TOP_KEYWORDS" default:"5"`
		IdentitySamples int `envconfig:"IDENTITY_TEXT_SAMPLES" default:"10"`
	} `envconfig:""`

	Queues struct {
		Analyze string `envconfig:"ANALYZE_QUEUE_KEY" default:"analyze_jobs"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
