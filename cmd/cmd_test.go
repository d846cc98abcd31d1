package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/screening"
	"github.com/abhisek/mamacheck/internal/store"
)

// setupEnv isolates config lookup and points the store at a temp file.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("MAMACHECK_LLM_PROVIDER", "none")
	t.Setenv("MAMACHECK_LOG_LEVEL", "error")
	dsn := filepath.Join(dir, "events.db")
	t.Setenv("MAMACHECK_STORE_DSN", dsn)
	return dsn
}

// resetFlags restores every flag so state does not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	resetFlags(rootCmd)
	cfgFile = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestBuildRuntime_AutoWithoutKeysSkipsStore(t *testing.T) {
	dsn := setupEnv(t)
	t.Setenv("MAMACHECK_LLM_PROVIDER", "auto")
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	resetFlags(rootCmd)
	cfgFile = ""

	rt, err := buildRuntime(context.Background(), false)
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.store)
	assert.Equal(t, "none", rt.providerName())
	assert.NoFileExists(t, dsn)
}

func TestBuildRuntime_MockOpensStore(t *testing.T) {
	dsn := setupEnv(t)
	t.Setenv("MAMACHECK_LLM_PROVIDER", "mock")
	resetFlags(rootCmd)
	cfgFile = ""

	rt, err := buildRuntime(context.Background(), false)
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.store)
	assert.Equal(t, "mock", rt.providerName())
	assert.FileExists(t, dsn)
}

func TestAssessCommand_JSON(t *testing.T) {
	setupEnv(t)

	out := run(t, "", "assess", "--json", "--rules-only",
		"severe abdominal pain on one side", "I feel dizzy")

	var got screening.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, screening.SourceRules, got.Source)
	assert.Equal(t, knowledge.TierHigh, got.Assessment.RiskTier)
	assert.Equal(t, "ectopic", got.Assessment.Condition())
}

func TestAssessCommand_StdinReport(t *testing.T) {
	setupEnv(t)

	out := run(t, "tired\n\n", "assess")
	assert.Contains(t, out, "Risk assessment")
	assert.Contains(t, out, "Low")
}

func TestAssessCommand_Arabic(t *testing.T) {
	setupEnv(t)

	out := run(t, "", "assess", "--lang", "ar", "--json", "عندي نزيف شديد")
	var got screening.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, knowledge.TierHigh, got.Assessment.RiskTier)
	assert.True(t, got.Assessment.UrgentCareNeeded)
}

func TestContextCommand(t *testing.T) {
	setupEnv(t)

	out := run(t, "", "context", "--json", "--top-k", "2", "bleeding and cramps")
	var got struct {
		Context   string   `json:"context"`
		FollowUps []string `json:"follow_ups"`
		Matches   []struct {
			Category string `json:"category"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.NotEmpty(t, got.Context)
	assert.LessOrEqual(t, len(got.Matches), 2)
}

func TestRulesCommand(t *testing.T) {
	setupEnv(t)

	out := run(t, "", "rules")
	assert.Contains(t, out, "Rule set")
	assert.Contains(t, out, "ectopic")
	assert.Contains(t, out, "preeclampsia")

	out = run(t, "", "rules", "--lang", "ar", "--verbose")
	assert.Contains(t, out, "(ar)")
	assert.Contains(t, out, "نزيف")
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)
	out := run(t, "", "version")
	assert.Contains(t, out, "mamacheck (devel)")
	assert.Contains(t, out, "rules v")
	assert.Contains(t, out, "patterns en=")
}

func TestLLMCommands(t *testing.T) {
	dsn := setupEnv(t)

	st, err := store.Open(dsn)
	require.NoError(t, err)
	repo := st.EventRepo()
	require.NoError(t, repo.AppendLLMRequest(context.Background(), store.LLMRequestEventData{
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		Purpose:      "assessment",
		InputTokens:  1000,
		OutputTokens: 200,
		LatencyMs:    850,
		Success:      true,
		RequestBody:  `{"messages":[]}`,
		ResponseBody: `{"riskTier":"High"}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(context.Background(), store.LLMRequestEventData{
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		Purpose:      "questions",
		InputTokens:  300,
		Success:      false,
		ErrorMessage: "model declined to answer",
		ErrorKind:    "refused",
	}))
	require.NoError(t, st.Close())

	out := run(t, "", "llm", "list")
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "assessment")

	out = run(t, "", "llm", "list", "--purpose", "other")
	assert.Contains(t, out, "No LLM events found.")

	out = run(t, "", "llm", "view", "2")
	assert.Contains(t, out, "[refused] model declined to answer")

	out = run(t, "", "llm", "view", "1")
	assert.Contains(t, out, "REQUEST")
	assert.Contains(t, out, `{"riskTier":"High"}`)

	out = run(t, "", "llm", "stats")
	assert.Contains(t, out, "Usage by Purpose")
	assert.Contains(t, out, "Estimated Cost (USD)")
	assert.Contains(t, out, "Failures by Kind")
	assert.Contains(t, out, "refused")
	assert.NotContains(t, out, "TOTAL (partial)")
}

func TestReadAnswers(t *testing.T) {
	got, err := readAnswers(strings.NewReader("  first \n\n\tsecond\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)
}
