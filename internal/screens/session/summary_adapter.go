package session

import (
	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/screen"
	"github.com/abhisek/interviewiz/internal/screens/summary"
)

// newReportScreen creates the report screen shown when the interview ends.
func newReportScreen(id string, r *feedback.Report) screen.Screen {
	return summary.New(id, r)
}
