package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/screening"
	"github.com/abhisek/mamacheck/internal/ui/report"
)

var assessCmd = &cobra.Command{
	Use:   "assess [answer...]",
	Short: "Assess a set of answers and print the risk tier",
	Long: `Assess classifies free-text answers. Each argument is one answer; with no
arguments, answers are read from stdin one per line.`,
	Example: `  mamacheck assess "I have a severe headache" "my vision is blurry"
  echo "عندي نزيف" | mamacheck assess --lang ar --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		asJSON, _ := cmd.Flags().GetBool("json")
		rulesOnly, _ := cmd.Flags().GetBool("rules-only")

		answers := args
		if len(answers) == 0 {
			var err error
			answers, err = readAnswers(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}

		rt, err := buildRuntime(cmd.Context(), rulesOnly)
		if err != nil {
			return err
		}
		defer rt.Close()

		l := knowledge.ParseLanguage(lang)
		out := rt.service.Assess(cmd.Context(), screening.Input{Answers: answers, Language: l})

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Render(out, l, rt.service.Rules(), 76))
		return nil
	},
}

// readAnswers reads non-blank lines.
func readAnswers(r io.Reader) ([]string, error) {
	var answers []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			answers = append(answers, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	return answers, nil
}

func init() {
	assessCmd.Flags().StringP("lang", "l", "en", "answer language: en or ar")
	assessCmd.Flags().Bool("json", false, "print the assessment as JSON")
	assessCmd.Flags().Bool("rules-only", false, "skip the LLM provider even when configured")
}
