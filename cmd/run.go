package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/interviewiz/internal/app"
	"github.com/abhisek/interviewiz/internal/logging"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Start or resume an interview in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	addAppFlags(interviewCmd)
}

func addAppFlags(c *cobra.Command) {
	c.Flags().String("session", "", "Session ID to resume or create; opens the interview directly")
	c.Flags().String("resume", "", "Path to a plain-text resume used to tailor the interview")
	c.Flags().String("log-file", "", "Append logs to this file (the terminal UI hides stderr)")
	c.Flags().Bool("skip-welcome", false, "Start on the home screen")
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	log := logging.Discard()
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		l, closer, err := fileLogger(cfg, path)
		if err != nil {
			return err
		}
		defer closer.Close()
		log = l
	}

	rt, err := openRuntime(ctx, cfg, runtimeOptions{Logger: log})
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.provider == nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured. Set ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or OPENROUTER_API_KEY.")
		fmt.Fprintln(os.Stderr, "Past sessions are still available.")
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	prof, err := rt.readProfile(ctx, resumePath)
	if err != nil {
		return err
	}
	if prof != nil {
		log.Info("profile extracted", slog.String("role_level", prof.Role()), slog.Int("skills", len(prof.Skills)))
	}

	sessionID, _ := cmd.Flags().GetString("session")
	skipWelcome, _ := cmd.Flags().GetBool("skip-welcome")
	return app.Run(app.Options{
		Engine:           rt.engine,
		InterviewerReady: rt.provider != nil,
		Profile:          prof,
		SessionID:        sessionID,
		SkipWelcome:      skipWelcome,
	})
}
