package llm

import (
	"context"
	"time"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an
// audit row.
type LoggingProvider struct {
	inner   Provider
	logRepo store.LLMLogRepo
	log     *logger.Logger
}

// WithLogging wraps a Provider with request auditing.
func WithLogging(p Provider, repo store.LLMLogRepo, log *logger.Logger) Provider {
	return &LoggingProvider{inner: p, logRepo: repo, log: log.With("component", "llm")}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	row := &store.LLMRequestLog{
		Provider:  l.inner.ModelID(),
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}

	if resp != nil {
		row.InputTokens = resp.Usage.InputTokens
		row.OutputTokens = resp.Usage.OutputTokens
		row.Model = resp.Model
	}
	if err != nil {
		row.ErrorMessage = err.Error()
	}

	// Audit failures must not fail the request itself.
	if l.logRepo != nil {
		if logErr := l.logRepo.Append(ctx, row); logErr != nil {
			l.log.Warn("failed to record llm request", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
