package cmd

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/interviewiz/internal/config"
)

// cfg and logger are loaded once before any command runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "interviewiz",
	Short: "AI mock technical interviewer",
	Long: "Interviewiz runs adaptive mock technical interviews with an LLM interviewer, " +
		"scores every answer and ends with a detailed feedback report.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file (overrides INTERVIEWIZ_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides INTERVIEWIZ_DB)")
	rootCmd.PersistentFlags().String("backend", "", "Session backend: sqlite, file, redis or memory")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	addAppFlags(rootCmd)

	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads .env, the config file and the environment, then applies
// command-line overrides (highest priority).
func loadConfig(cmd *cobra.Command) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		c.Store.DBPath = p
	}
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		c.Store.Backend = b
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		c.Log.Level = l
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	logger, err = newLogger(c)
	return err
}
