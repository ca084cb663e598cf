package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show interview statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cfg, runtimeOptions{NoLLM: true, Logger: logger})
		if err != nil {
			return err
		}
		defer rt.Close()

		sums, err := rt.engine.List(ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		st := summarize(sums)
		fmt.Println("Interviews")
		fmt.Println(strings.Repeat("─", 40))
		fmt.Printf("%-20s %d\n", "Started", st.total)
		fmt.Printf("%-20s %d\n", "Completed", st.completed)
		if st.completed > 0 {
			fmt.Printf("%-20s %.1f\n", "Average score", st.average)
			fmt.Printf("%-20s %.1f\n", "Best score", st.best)
			fmt.Printf("%-20s %d%%\n", "Pass rate", st.passed*100/st.completed)
		}

		if rt.backend.Log == nil {
			return nil
		}
		events, err := rt.backend.Log.SessionEvents(ctx, store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query session events: %w", err)
		}
		counts := make(map[string]int)
		for _, e := range events {
			counts[e.Action]++
		}
		fmt.Println()
		fmt.Println("Lifecycle events")
		fmt.Println(strings.Repeat("─", 40))
		for _, a := range []string{store.SessionActionStart, store.SessionActionEnd, store.SessionActionReset} {
			fmt.Printf("%-20s %d\n", a, counts[a])
		}
		return nil
	},
}

type sessionStats struct {
	total, completed, passed int
	average, best            float64
}

func summarize(sums []store.SessionSummary) sessionStats {
	st := sessionStats{total: len(sums)}
	var sum float64
	for _, s := range sums {
		if !s.Completed {
			continue
		}
		st.completed++
		sum += s.FinalScore
		st.best = max(st.best, s.FinalScore)
		if s.FinalScore >= session.PassScore {
			st.passed++
		}
	}
	if st.completed > 0 {
		st.average = sum / float64(st.completed)
	}
	return st
}
