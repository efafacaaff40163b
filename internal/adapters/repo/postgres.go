package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"brand-profiler/internal/domain"
	"brand-profiler/internal/infra/metrics"
)

// ErrProfileNotFound возвращается, если профиль бренда ещё не построен.
var ErrProfileNotFound = errors.New("профиль бренда не найден")

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.BrandRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// SaveProfile сохраняет профиль как JSONB с апсертом по бренду.
func (p *Postgres) SaveProfile(ctx context.Context, profile domain.BrandProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO brand_profiles (brand_id, brand_name, source, confidence_level, profile, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (brand_id) DO UPDATE SET
	brand_name = EXCLUDED.brand_name,
	source = EXCLUDED.source,
	confidence_level = EXCLUDED.confidence_level,
	profile = EXCLUDED.profile,
	updated_at = EXCLUDED.updated_at
`, profile.BrandID, profile.BrandName, string(profile.Source), string(profile.ConfidenceLevel), payload, profile.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "brand_profiles_upsert", "brand_profiles", start, err)
	if err != nil {
		return fmt.Errorf("сохранение профиля: %w", err)
	}
	return nil
}

// GetProfile возвращает последний сохранённый профиль бренда.
func (p *Postgres) GetProfile(ctx context.Context, brandID string) (domain.BrandProfile, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var payload []byte
	err := p.pool.QueryRow(ctx, `
SELECT profile FROM brand_profiles WHERE brand_id = $1
`, brandID).Scan(&payload)
	metrics.ObserveNetworkRequest("postgres", "brand_profiles_select", "brand_profiles", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BrandProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return domain.BrandProfile{}, fmt.Errorf("чтение профиля: %w", err)
	}

	var profile domain.BrandProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return domain.BrandProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return profile, nil
}

// RecordJobStatus фиксирует результат обработки задачи анализа.
func (p *Postgres) RecordJobStatus(ctx context.Context, jobID, brandID, status string) error {
	if jobID == "" {
		return nil
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO analyze_jobs (job_id, brand_id, status, finished_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (job_id) DO UPDATE SET status = EXCLUDED.status, finished_at = now()
`, jobID, brandID, status)
	metrics.ObserveNetworkRequest("postgres", "analyze_jobs_upsert", "analyze_jobs", start, err)
	if err != nil {
		return fmt.Errorf("статус задачи: %w", err)
	}
	return nil
}
