package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMLogRepo_Recent(t *testing.T) {
	st := testStore(t)
	repo := st.LLMLogRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		err := repo.Append(ctx, &LLMRequestLog{
			Provider:    "anthropic",
			Model:       "claude-sonnet-4-5",
			Purpose:     "question-gen",
			InputTokens: 100 + i,
			Success:     true,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	rows, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Newest first.
	assert.Equal(t, 104, rows[0].InputTokens)
	assert.Equal(t, 103, rows[1].InputTokens)
	assert.Equal(t, 102, rows[2].InputTokens)
}

func TestLLMLogRepo_UsageByPurpose(t *testing.T) {
	st := testStore(t)
	repo := st.LLMLogRepo()
	ctx := context.Background()

	rows := []*LLMRequestLog{
		{Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Purpose: "question-gen", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Purpose: "idea-extraction", InputTokens: 1000, OutputTokens: 600, LatencyMs: 800, Success: true},
	}
	for _, row := range rows {
		row.CreatedAt = time.Now().UTC()
		require.NoError(t, repo.Append(ctx, row))
	}

	usage, err := repo.UsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	// Sorted by purpose name.
	assert.Equal(t, "idea-extraction", usage[0].Purpose)
	assert.Equal(t, int64(1), usage[0].Calls)
	assert.Equal(t, int64(1000), usage[0].InputTokens)

	assert.Equal(t, "question-gen", usage[1].Purpose)
	assert.Equal(t, int64(2), usage[1].Calls)
	assert.Equal(t, int64(400), usage[1].InputTokens)
	assert.Equal(t, int64(200), usage[1].OutputTokens)
	assert.InDelta(t, 300.0, usage[1].AvgLatencyMs, 0.01)
}
