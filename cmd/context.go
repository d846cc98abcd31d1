package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mamacheck/internal/knowledge"
)

var contextCmd = &cobra.Command{
	Use:   "context [answer...]",
	Short: "Show the medical knowledge retrieved for a set of answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		topK, _ := cmd.Flags().GetInt("top-k")
		asJSON, _ := cmd.Flags().GetBool("json")
		if topK < 0 {
			return fmt.Errorf("--top-k must not be negative")
		}

		answers := args
		if len(answers) == 0 {
			var err error
			answers, err = readAnswers(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}

		rt, err := buildRuntime(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		l := knowledge.ParseLanguage(lang)
		ret := rt.service.Retriever()
		matches := ret.Search(answers, l, topK)
		followUps := ret.FollowUps(answers, l, 0)

		w := cmd.OutOrStdout()
		if asJSON {
			type match struct {
				Category   string  `json:"category"`
				Similarity float64 `json:"similarity"`
			}
			out := struct {
				Context   string   `json:"context"`
				FollowUps []string `json:"follow_ups"`
				Matches   []match  `json:"matches"`
			}{
				Context:   ret.RelevantContext(answers, l, topK),
				FollowUps: followUps,
				Matches:   []match{},
			}
			for _, m := range matches {
				out.Matches = append(out.Matches, match{Category: m.Item.Category, Similarity: m.Similarity})
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if len(matches) == 0 {
			fmt.Fprintln(w, "No corpus item passed the similarity threshold; showing the default context.")
		} else {
			fmt.Fprintf(w, "%-24s  %s\n", "Category", "Similarity")
			fmt.Fprintln(w, strings.Repeat("─", 40))
			for _, m := range matches {
				fmt.Fprintf(w, "%-24s  %.3f\n", m.Item.Category, m.Similarity)
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, ret.RelevantContext(answers, l, topK))

		if len(followUps) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Follow-up questions:")
			for _, q := range followUps {
				fmt.Fprintln(w, "  -", q)
			}
		}
		return nil
	},
}

func init() {
	contextCmd.Flags().StringP("lang", "l", "en", "answer language: en or ar")
	contextCmd.Flags().IntP("top-k", "k", 0, "number of corpus items to retrieve (0 uses retrieval.top_k)")
	contextCmd.Flags().Bool("json", false, "print JSON")
}
