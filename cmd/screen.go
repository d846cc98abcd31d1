package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/mamacheck/internal/app"
	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/screens/triage"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run an interactive screening in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		return runScreen(cmd, lang)
	},
}

// runScreen launches the TUI. An empty lang shows the language menu.
func runScreen(cmd *cobra.Command, lang string) error {
	rt, err := buildRuntime(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Log lines would corrupt the alternate screen.
	rt.logger.SetOutput(io.Discard)

	var l knowledge.Language
	if lang != "" {
		l = knowledge.ParseLanguage(lang)
	}
	return app.Run(triage.Deps{Service: rt.service, Sessions: rt.sessions}, l)
}

func init() {
	screenCmd.Flags().StringP("lang", "l", "", "screening language: en or ar (default: ask)")
}
