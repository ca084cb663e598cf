package integrity

// Stats summarizes a numeric series.
type Stats struct {
	Samples int     `json:"samples"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Report is the end-of-interview integrity summary.
type Report struct {
	Suspicion       int              `json:"suspicion"`
	Level           Level            `json:"level"`
	TotalFlags      int              `json:"total_flags"`
	FlagsBySeverity map[Severity]int `json:"flags_by_severity"`
	Flags           []Flag           `json:"flags"`
	ResponseTime    Stats            `json:"response_time"`
	WordCount       Stats            `json:"word_count"`
	Verdict         string           `json:"verdict"`
}

var verdicts = map[Level]string{
	LevelClean:  "No integrity concerns detected.",
	LevelLow:    "Minor irregularities detected; likely benign.",
	LevelMedium: "Several irregular answer patterns detected; a review is recommended.",
	LevelHigh:   "Strong indicators of external assistance; manual review required.",
}

// Report builds the integrity summary from the current state.
func (m *Monitor) Report() Report {
	lvl := m.Level()
	r := Report{
		Suspicion:  m.state.Suspicion,
		Level:      lvl,
		TotalFlags: len(m.state.Flags),
		FlagsBySeverity: map[Severity]int{
			SeverityLow:    0,
			SeverityMedium: 0,
			SeverityHigh:   0,
		},
		Flags:        append([]Flag(nil), m.state.Flags...),
		ResponseTime: stats(m.state.ResponseTimes),
		Verdict:      verdicts[lvl],
	}
	for _, f := range m.state.Flags {
		r.FlagsBySeverity[f.Severity]++
	}

	counts := make([]float64, len(m.state.WordCounts))
	for i, n := range m.state.WordCounts {
		counts[i] = float64(n)
	}
	r.WordCount = stats(counts)
	return r
}

func stats(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	s := Stats{Samples: len(xs), Min: xs[0], Max: xs[0]}
	var sum float64
	for _, x := range xs {
		sum += x
		s.Min = min(s.Min, x)
		s.Max = max(s.Max, x)
	}
	s.Average = sum / float64(len(xs))
	return s
}
