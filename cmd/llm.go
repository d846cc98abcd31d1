package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mamacheck/internal/llm"
	"github.com/abhisek/mamacheck/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

// withStore opens the event store for an llm subcommand.
func withStore(fn func(w io.Writer, repo store.EventRepo) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(cmd.OutOrStdout(), st.EventRepo())
	}
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		return withStore(func(w io.Writer, repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(events) == 0 {
				fmt.Fprintln(w, "No LLM events found.")
				return nil
			}

			fmt.Fprintf(w, "%-5s  %-19s  %-11s  %-10s  %-26s  %-6s  %-6s  %-7s  %s\n",
				"ID", "Timestamp", "Purpose", "Provider", "Model", "In", "Out", "Ms", "OK")
			fmt.Fprintln(w, strings.Repeat("─", 108))

			for _, e := range events {
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Fprintf(w, "%-5d  %-19s  %-11s  %-10s  %-26s  %-6d  %-6d  %-7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Purpose,
					truncate(e.Provider, 10),
					truncate(e.Model, 26),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					ok,
				)
			}
			return nil
		})(cmd, args)
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withStore(func(w io.Writer, repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			sep := strings.Repeat("─", 60)

			fmt.Fprintf(w, "ID:        %d\n", e.ID)
			fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Provider:  %s\n", e.Provider)
			fmt.Fprintf(w, "Model:     %s\n", e.Model)
			fmt.Fprintf(w, "Purpose:   %s\n", e.Purpose)
			fmt.Fprintf(w, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			fmt.Fprintf(w, "Latency:   %dms\n", e.LatencyMs)
			fmt.Fprintf(w, "Success:   %v\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Fprintf(w, "Error:     [%s] %s\n", e.ErrorKind, e.ErrorMessage)
			}

			for _, part := range []struct{ title, body string }{
				{"REQUEST", e.RequestBody},
				{"RESPONSE", e.ResponseBody},
			} {
				fmt.Fprintln(w)
				fmt.Fprintln(w, sep)
				fmt.Fprintln(w, part.title)
				fmt.Fprintln(w, sep)
				if part.body == "" {
					fmt.Fprintln(w, "(not captured)")
				} else {
					fmt.Fprintln(w, part.body)
				}
			}
			return nil
		})(cmd, args)
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(w io.Writer, repo store.EventRepo) error {
			return printUsage(cmd.Context(), w, repo)
		})(cmd, args)
	},
}

func printUsage(ctx context.Context, w io.Writer, repo store.EventRepo) error {
	stats, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		return fmt.Errorf("query usage: %w", err)
	}
	if len(stats) == 0 {
		fmt.Fprintln(w, "No LLM usage recorded yet.")
		return nil
	}

	fmt.Fprintln(w, "Usage by Purpose")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	var totalCalls, totalIn, totalOut int
	for _, st := range stats {
		fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
			st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
		totalCalls += st.Calls
		totalIn += st.InputTokens
		totalOut += st.OutputTokens
	}
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d\n",
		"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

	failures, err := repo.LLMFailuresByKind(ctx)
	if err != nil {
		return fmt.Errorf("query failures: %w", err)
	}
	if len(failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failures by Kind")
		fmt.Fprintln(w, strings.Repeat("─", 72))
		for _, f := range failures {
			kind := f.Kind
			if kind == "" {
				kind = "unclassified"
			}
			fmt.Fprintf(w, "%-16s  %6d\n", kind, f.Calls)
		}
	}

	modelUsage, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		return fmt.Errorf("query model usage: %w", err)
	}
	if len(modelUsage) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated Cost (USD)")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	var totalCost float64
	var unknown []string
	for _, mu := range modelUsage {
		cost := llm.LookupCost(mu.Model)
		if cost == nil {
			unknown = append(unknown, mu.Model)
			fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, "?")
			continue
		}
		c := cost.Cost(mu.InputTokens, mu.OutputTokens)
		totalCost += c
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, formatCost(c))
	}

	fmt.Fprintln(w, strings.Repeat("─", 72))
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "filter by purpose (assessment, questions)")
	llmListCmd.Flags().Duration("since", 0, "only events newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
