package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abhisek/bookwise/internal/logger"
)

// LLMLogRepo records LLM API calls for auditing and cost tracking.
type LLMLogRepo interface {
	Append(ctx context.Context, row *LLMRequestLog) error

	// Recent returns the newest rows, up to limit.
	Recent(ctx context.Context, limit int) ([]*LLMRequestLog, error)

	// UsageByPurpose aggregates calls and token counts per purpose.
	UsageByPurpose(ctx context.Context) ([]*LLMUsage, error)
}

// LLMUsage is an aggregate row of LLM consumption for one purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int64
	InputTokens  int64
	OutputTokens int64
	AvgLatencyMs float64
}

type llmLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewLLMLogRepo creates an LLMLogRepo.
func NewLLMLogRepo(db *gorm.DB, log *logger.Logger) LLMLogRepo {
	return &llmLogRepo{db: db, log: log.With("repo", "llmlog")}
}

func (r *llmLogRepo) Append(ctx context.Context, row *LLMRequestLog) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("append llm log: %w", err)
	}
	return nil
}

func (r *llmLogRepo) Recent(ctx context.Context, limit int) ([]*LLMRequestLog, error) {
	var out []*LLMRequestLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recent llm logs: %w", err)
	}
	return out, nil
}

func (r *llmLogRepo) UsageByPurpose(ctx context.Context) ([]*LLMUsage, error) {
	var out []*LLMUsage
	err := r.db.WithContext(ctx).
		Model(&LLMRequestLog{}).
		Select("purpose, COUNT(*) AS calls, SUM(input_tokens) AS input_tokens, SUM(output_tokens) AS output_tokens, AVG(latency_ms) AS avg_latency_ms").
		Group("purpose").
		Order("purpose ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("llm usage by purpose: %w", err)
	}
	return out, nil
}
