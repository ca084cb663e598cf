package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List, inspect and reset stored interview sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cfg, runtimeOptions{NoLLM: true, Logger: logger})
		if err != nil {
			return err
		}
		defer rt.Close()

		sums, err := rt.engine.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(sums) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-8s  %5s  %-11s  %s\n",
			"ID", "Created", "Level", "Qs", "Status", "Score")
		fmt.Println(strings.Repeat("─", 94))
		for _, s := range sums {
			status, score := "in progress", "-"
			if s.Completed {
				status = "completed"
				score = fmt.Sprintf("%.1f", s.FinalScore)
			}
			level := s.RoleLevel
			if level == "" {
				level = "-"
			}
			fmt.Printf("%-36s  %-16s  %-8s  %5d  %-11s  %s\n",
				truncate(s.ID, 36),
				s.CreatedAt.Local().Format("2006-01-02 15:04"),
				level, s.QuestionCount, status, score)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a session snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cfg, runtimeOptions{NoLLM: true, Logger: logger})
		if err != nil {
			return err
		}
		defer rt.Close()

		snap, err := rt.engine.Get(cmd.Context(), args[0])
		if err != nil {
			return sessionError(args[0], err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

var sessionsResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Delete a session so its ID starts fresh",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cfg, runtimeOptions{NoLLM: true, Logger: logger})
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.engine.Reset(cmd.Context(), args[0]); err != nil {
			return sessionError(args[0], err)
		}
		fmt.Printf("Session %s reset.\n", args[0])
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Print the feedback report for a session",
	Long: "Print the feedback report for a session. Unfinished sessions get an " +
		"interim report built from the answers so far.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cfg, runtimeOptions{NoLLM: true, Logger: logger})
		if err != nil {
			return err
		}
		defer rt.Close()

		r, err := rt.engine.Report(cmd.Context(), args[0])
		if err != nil {
			return sessionError(args[0], err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}
		fmt.Print(feedback.Render(*r))
		return nil
	},
}

// sessionError turns engine errors into messages for the terminal.
func sessionError(id string, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return fmt.Errorf("session %s not found", id)
	case errors.Is(err, store.ErrInvalidID):
		return fmt.Errorf("invalid session ID %q", id)
	}
	return err
}

func init() {
	reportCmd.Flags().Bool("json", false, "Print the report as JSON")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsResetCmd)
}
