package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/risk"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the active rule set",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		verbose, _ := cmd.Flags().GetBool("verbose")

		rt, err := buildRuntime(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		rules := rt.service.Rules()
		l := knowledge.ParseLanguage(lang)
		w := cmd.OutOrStdout()

		fmt.Fprintf(w, "Rule set %s (%s)\n\n", rules.Version(), l)

		fmt.Fprintf(w, "%-10s  %6s  %7s\n", "Band", "Weight", "Phrases")
		fmt.Fprintln(w, strings.Repeat("─", 28))
		for _, b := range []risk.Band{risk.BandHigh, risk.BandMedium, risk.BandLow, risk.BandNeutral} {
			phrases := rules.Phrases(l, b)
			fmt.Fprintf(w, "%-10s  %6d  %7d\n", b, b.Weight(), len(phrases))
			if verbose {
				for _, p := range phrases {
					fmt.Fprintln(w, "    ", p)
				}
			}
		}

		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-16s  %-10s  %s\n", "Pattern", "Min signs", "Name")
		fmt.Fprintln(w, strings.Repeat("─", 60))
		for _, p := range rules.Patterns(l) {
			fmt.Fprintf(w, "%-16s  %-10d  %s\n", p.ID, p.MinMatches, p.Name)
			if verbose {
				for i, sign := range p.Signs() {
					fmt.Fprintf(w, "    sign %d: %s\n", i+1, strings.Join(sign, ", "))
				}
			}
		}
		return nil
	},
}

func init() {
	rulesCmd.Flags().StringP("lang", "l", "en", "rule table language: en or ar")
	rulesCmd.Flags().BoolP("verbose", "v", false, "list every phrase and pattern sign")
}
