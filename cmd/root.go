package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mamacheck/internal/config"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "mamacheck",
	Short: "Pregnancy symptom triage",
	Long: `MamaCheck screens pregnancy symptoms in English or Arabic and assigns a
Low, Medium or High risk tier with an explanation and a recommendation.

A deterministic rule engine always produces the assessment. When an LLM
provider is configured, its answers are accepted only if they never rate
risk lower than the rules do.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScreen(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/mamacheck/config.yaml)")
	pf.String("db", "", "LLM event store: SQLite path or postgres:// DSN (overrides MAMACHECK_STORE_DSN)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("llm-provider", "", "LLM provider: none, auto, openai, anthropic, gemini, openrouter or mock")

	_ = v.BindPFlag("store.dsn", pf.Lookup("db"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("llm.provider", pf.Lookup("llm-provider"))

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
