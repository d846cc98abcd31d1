package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/risk"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build and the built-in rule set it carries",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		rules := risk.DefaultRuleSet()

		fmt.Fprintln(out, "mamacheck", buildVersion())
		fmt.Fprintln(out, "rules", rules.Version())
		fmt.Fprintf(out, "patterns en=%d ar=%d\n",
			len(rules.Patterns(knowledge.English)), len(rules.Patterns(knowledge.Arabic)))
	},
}

// buildVersion prefers the ldflags value, then the module version recorded
// by go install.
func buildVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
