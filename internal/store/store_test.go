package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
	if s.Dialect() != DialectSQLite {
		t.Errorf("dialect = %q, want sqlite", s.Dialect())
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestRebind(t *testing.T) {
	sqlite := &Store{dialect: DialectSQLite}
	pg := &Store{dialect: DialectPostgres}

	q := "SELECT a FROM t WHERE b = ? AND c = ?"
	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", pg.rebind(q))
}

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"assessment", "questions", "assessment"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock-model",
			Purpose:      purpose,
			InputTokens:  100,
			OutputTokens: 20,
			LatencyMs:    40,
			Success:      true,
			RequestBody:  "[user]\nhello",
			ResponseBody: `{"riskTier":"Low"}`,
		})
		require.NoError(t, err)
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[1].ID, "newest first")
	assert.True(t, all[0].Success)
	assert.Equal(t, `{"riskTier":"Low"}`, all[0].ResponseBody)

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "assessment", Limit: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "assessment", filtered[0].Purpose)

	future, err := repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)

	got, err := repo.GetLLMEvent(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, all[2].Purpose, got.Purpose)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	add := func(purpose, model string, in, out int, failure string) {
		t.Helper()
		data := LLMRequestEventData{
			Provider: "mock", Model: model, Purpose: purpose,
			InputTokens: in, OutputTokens: out, LatencyMs: 10, Success: failure == "",
		}
		if failure != "" {
			data.ErrorMessage = "boom"
			data.ErrorKind = failure
		}
		require.NoError(t, repo.AppendLLMRequest(ctx, data))
	}
	add("assessment", "m1", 10, 5, "")
	add("assessment", "m2", 30, 5, "refused")
	add("questions", "m1", 7, 3, "")
	add("questions", "m2", 0, 0, "rate_limit")
	add("assessment", "m2", 0, 0, "refused")

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, PurposeUsage{Purpose: "assessment", Calls: 3, InputTokens: 40, OutputTokens: 10, AvgLatencyMs: 10}, byPurpose[0])

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, ModelUsage{Model: "m1", Calls: 2, InputTokens: 17, OutputTokens: 8}, byModel[0])

	failures, err := repo.LLMFailuresByKind(ctx)
	require.NoError(t, err)
	assert.Equal(t, []FailureCount{{Kind: "refused", Calls: 2}, {Kind: "rate_limit", Calls: 1}}, failures)

	refused, err := repo.GetLLMEvent(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, refused)
	assert.Equal(t, "refused", refused.ErrorKind)
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "x.db")
	t.Setenv("MAMACHECK_DB", p)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.DirExists(t, filepath.Dir(p))
}

func TestEnsureDirSkipsDSN(t *testing.T) {
	assert.NoError(t, EnsureDir("postgres://user@localhost/db"))
}
