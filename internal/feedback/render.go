package feedback

import (
	"fmt"
	"strings"
)

// SpokenSummary returns a short prose summary suitable for text-to-speech.
func SpokenSummary(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You scored %.1f out of 10, which puts you in the %s tier. %s",
		r.OverallScore, r.Tier.Name, r.Tier.Description)

	if s := observationTexts(r.Strengths, 2); len(s) > 0 {
		fmt.Fprintf(&b, " Your strongest areas were: %s.", strings.ToLower(strings.Join(s, " and ")))
	}
	if w := observationTexts(r.Weaknesses, 2); len(w) > 0 {
		fmt.Fprintf(&b, " To improve, focus on: %s.", strings.ToLower(strings.Join(w, " and ")))
	}
	if len(r.Dimensions) > 0 && r.AnswerCount > 0 {
		weakest := r.Dimensions[0]
		for _, d := range r.Dimensions[1:] {
			if d.Average < weakest.Average {
				weakest = d
			}
		}
		fmt.Fprintf(&b, " Your weakest dimension was %s at %.1f.", strings.ToLower(weakest.Label), weakest.Average)
	}
	return b.String()
}

func observationTexts(obs []Observation, n int) []string {
	var out []string
	for _, o := range obs[:min(n, len(obs))] {
		out = append(out, o.Text)
	}
	return out
}

// Render formats the report as Markdown.
func Render(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", r.Headline, r.Tier.Description)
	fmt.Fprintf(&b, "Answers evaluated: %d\n\n", r.AnswerCount)

	b.WriteString("## Dimensions\n\n")
	for _, d := range r.Dimensions {
		fmt.Fprintf(&b, "- %-18s %4.1f  (%s)\n", d.Label, d.Average, d.Rating)
	}

	writeObservations(&b, "Strengths", r.Strengths)
	writeObservations(&b, "Areas to improve", r.Weaknesses)

	if r.Best != nil {
		b.WriteString("\n## Highlights\n\n")
		fmt.Fprintf(&b, "- Best (Q%d, %d/10): %s\n", r.Best.Index, r.Best.Score, r.Best.Excerpt)
		fmt.Fprintf(&b, "- Needs work (Q%d, %d/10): %s\n", r.Worst.Index, r.Worst.Score, r.Worst.Excerpt)
	}

	t := r.Trajectory
	fmt.Fprintf(&b, "\n## Difficulty\n\nStarted at level %d, ended at %d, peaked at %d (%s).\n", t.Start, t.End, t.Peak, t.Trend)

	if g := r.SkillGap; g != nil && (len(g.Gaps) > 0 || len(g.Strengths) > 0) {
		fmt.Fprintf(&b, "\n## Skill gaps (%s, gap score %d/100)\n\n", g.RoleLevel, g.OverallGapScore)
		for _, gap := range g.Gaps {
			fmt.Fprintf(&b, "- %s: %.1f vs %.1f expected [%s]\n", gap.Topic, gap.Average, gap.Baseline, gap.Severity)
		}
		for _, s := range g.Strengths {
			fmt.Fprintf(&b, "- %s: %.1f, %.1f above expectations\n", s.Topic, s.Average, s.Surplus)
		}
	}

	b.WriteString("\n## Roadmap\n")
	writeList(&b, "Immediate", r.Roadmap.Immediate)
	writeList(&b, "Next few weeks", r.Roadmap.ShortTerm)
	writeList(&b, "Longer term", r.Roadmap.LongTerm)

	if in := r.Integrity; in != nil {
		fmt.Fprintf(&b, "\n## Integrity\n\n%s (suspicion %d/100, %d flags)\n", in.Verdict, in.Suspicion, in.TotalFlags)
	}
	return b.String()
}

func writeObservations(b *strings.Builder, title string, obs []Observation) {
	if len(obs) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, o := range obs {
		fmt.Fprintf(b, "- %s (%d%% of answers)\n", o.Text, o.Consistency)
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
