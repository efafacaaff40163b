package domain

import (
	"context"
	"time"
)

// AnalyzeJobCause описывает источник запроса на анализ.
type AnalyzeJobCause string

const (
	// AnalyzeCauseManual — анализ запрошен пользователем вручную.
	AnalyzeCauseManual AnalyzeJobCause = "manual"
	// AnalyzeCauseScheduled — анализ запланирован по расписанию.
	AnalyzeCauseScheduled AnalyzeJobCause = "scheduled"
)

// AnalyzeJob содержит информацию о задаче построения бренд-профиля.
// Locators задаёт источники по платформам: platform → URL или
// идентификатор аккаунта.
type AnalyzeJob struct {
	ID           string            `json:"job_id,omitempty"`
	BrandID      string            `json:"brand_id"`
	BrandName    string            `json:"brand_name,omitempty"`
	Locators     map[string]string `json:"locators"`
	MaxPerSource int               `json:"max_per_source,omitempty"`
	RequestedAt  time.Time         `json:"requested_at"`
	Cause        AnalyzeJobCause   `json:"cause"`
}

// AnalyzeQueue описывает очередь задач на построение профилей.
type AnalyzeQueue interface {
	Enqueue(ctx context.Context, job AnalyzeJob) error
	Receive(ctx context.Context) (AnalyzeJob, AnalyzeAckFunc, error)
}

// AnalyzeAckFunc подтверждает успешную обработку или запрашивает
// повтор доставки задачи.
type AnalyzeAckFunc func(success bool) error
