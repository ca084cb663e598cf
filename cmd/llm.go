package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/interviewiz/internal/llm"
	"github.com/abhisek/interviewiz/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect interviewer and extraction calls made to the LLM",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		sessionID, _ := cmd.Flags().GetString("session")

		events, err := withEventLog(cmd, func(log *store.EventLog) ([]store.LLMRequestEvent, error) {
			return log.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, SessionID: sessionID})
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		renderEventList(cmd.OutOrStdout(), filterPurpose(events, purpose))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		e, err := withEventLog(cmd, func(log *store.EventLog) (*store.LLMRequestEvent, error) {
			return log.GetLLMEvent(cmd.Context(), id)
		})
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		renderEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		type usage struct{ byPurpose, byModel []store.LLMUsage }
		u, err := withEventLog(cmd, func(log *store.EventLog) (usage, error) {
			p, err := log.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return usage{}, err
			}
			m, err := log.LLMUsageByModel(cmd.Context())
			return usage{p, m}, err
		})
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		w := cmd.OutOrStdout()
		if len(u.byPurpose) == 0 {
			fmt.Fprintln(w, "No LLM usage recorded yet.")
			return nil
		}
		renderPurposeUsage(w, u.byPurpose)
		fmt.Fprintln(w)
		renderModelCost(w, u.byModel)
		return nil
	},
}

// withEventLog runs fn against the event log of the configured database
// and closes it afterwards.
func withEventLog[T any](cmd *cobra.Command, fn func(*store.EventLog) (T, error)) (T, error) {
	var zero T
	rt, err := openRuntime(cmd.Context(), cfg, runtimeOptions{NoLLM: true, Logger: logger})
	if err != nil {
		return zero, err
	}
	defer rt.Close()
	if rt.backend.Log == nil {
		return zero, errors.New("the memory backend keeps no event log")
	}
	return fn(rt.backend.Log)
}

func filterPurpose(events []store.LLMRequestEvent, purpose string) []store.LLMRequestEvent {
	if purpose == "" {
		return events
	}
	out := events[:0:0]
	for _, e := range events {
		if e.Purpose == purpose {
			out = append(out, e)
		}
	}
	return out
}

func rule(w io.Writer, width int) {
	fmt.Fprintln(w, strings.Repeat("─", width))
}

func renderEventList(w io.Writer, events []store.LLMRequestEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No LLM events found.")
		return
	}
	fmt.Fprintf(w, "%-5s  %-19s  %-15s  %-12s  %-28s  %6s  %6s  %7s  %s\n",
		"ID", "Timestamp", "Purpose", "Session", "Model", "In", "Out", "Ms", "OK")
	rule(w, 112)
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-15s  %-12s  %-28s  %6d  %6d  %7d  %s\n",
			e.ID,
			e.Timestamp.Local().Format(timeLayout),
			e.Purpose,
			truncate(e.SessionID, 12),
			truncate(e.Model, 28),
			e.InputTokens,
			e.OutputTokens,
			e.LatencyMs,
			ok)
	}
}

func renderEvent(w io.Writer, e *store.LLMRequestEvent) {
	field := func(label, format string, args ...any) {
		fmt.Fprintf(w, "%-10s "+format+"\n", append([]any{label + ":"}, args...)...)
	}
	field("ID", "%d", e.ID)
	if e.SessionID != "" {
		field("Session", "%s", e.SessionID)
	}
	field("Time", "%s", e.Timestamp.Local().Format(timeLayout))
	field("Provider", "%s", e.Provider)
	field("Model", "%s", e.Model)
	field("Purpose", "%s", e.Purpose)
	field("Tokens", "%d in / %d out", e.InputTokens, e.OutputTokens)
	if c := llm.LookupCost(e.Model); c != nil {
		field("Cost", "%s", formatCost(c.Cost(e.InputTokens, e.OutputTokens)))
	}
	field("Latency", "%dms", e.LatencyMs)
	field("Success", "%v", e.Success)
	if e.ErrorMessage != "" {
		field("Error", "%s", e.ErrorMessage)
	}

	for _, part := range []struct{ title, body string }{
		{"REQUEST", e.RequestBody},
		{"RESPONSE", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		rule(w, 60)
		fmt.Fprintln(w, part.title)
		rule(w, 60)
		if part.body == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

func renderPurposeUsage(w io.Writer, rows []store.LLMUsage) {
	fmt.Fprintln(w, "Usage by Purpose")
	rule(w, 72)
	fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	rule(w, 72)

	var sum store.LLMUsage
	for _, r := range rows {
		fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d  %8.0f\n",
			r.Key, r.Calls, r.InputTokens, r.OutputTokens, r.InputTokens+r.OutputTokens, r.AvgLatencyMs)
		sum.Calls += r.Calls
		sum.InputTokens += r.InputTokens
		sum.OutputTokens += r.OutputTokens
	}
	rule(w, 72)
	fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d\n",
		"TOTAL", sum.Calls, sum.InputTokens, sum.OutputTokens, sum.InputTokens+sum.OutputTokens)
}

// renderModelCost prices each model's usage. Models without a known price
// are listed with "?" and make the total partial.
func renderModelCost(w io.Writer, rows []store.LLMUsage) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, "Estimated Cost (USD)")
	rule(w, 72)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %9s\n", "Model", "Calls", "Input", "Output", "Cost")
	rule(w, 72)

	var total float64
	var unpriced []string
	for _, r := range rows {
		price := "?"
		if c := llm.LookupCost(r.Key); c != nil {
			usd := c.Cost(r.InputTokens, r.OutputTokens)
			total += usd
			price = formatCost(usd)
		} else {
			unpriced = append(unpriced, r.Key)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %9s\n",
			truncate(r.Key, 32), r.Calls, r.InputTokens, r.OutputTokens, price)
	}
	rule(w, 72)
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %9s\n", label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (interview-turn or profile-extract)")
	llmListCmd.Flags().StringP("session", "s", "", "Filter by session ID")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
