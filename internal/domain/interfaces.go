package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Collector выгружает сырые записи одной платформы.
// Реализации не возвращают ошибок: любой сбой получения данных
// логируется и даёт пустой срез. maxItems ограничивает сверху,
// но не гарантирует точное количество.
type Collector interface {
	Collect(ctx context.Context, locator string, maxItems int) []RawRecord
}

// Extractor выполняет структурированную генерацию: промпт со схемой
// на входе, валидный JSON на выходе. Обрамляющие code-fence маркеры
// реализация снимает сама, ошибка парсинга трактуется как сбой сервиса.
type Extractor interface {
	GenerateStructured(ctx context.Context, prompt string, temperature float64) (json.RawMessage, error)
}

// BrandRepo хранит бренд-профили.
type BrandRepo interface {
	SaveProfile(ctx context.Context, profile BrandProfile) error
	GetProfile(ctx context.Context, brandID string) (BrandProfile, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}

// Notifier сообщает оператору о завершении анализа.
type Notifier interface {
	NotifyProfileReady(ctx context.Context, profile BrandProfile) error
}
