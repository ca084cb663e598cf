// Package protocol extracts the structured score and completion tokens
// the interviewer model embeds in its replies.
//
// Tokens:
//
//	SCORE|7/10
//	INTERVIEW_COMPLETE|8.5/10|true
package protocol

import (
	"regexp"
	"strconv"
	"strings"
)

// Segment is one piece of a parsed reply.
type Segment interface {
	segment()
}

// ScoreToken carries the model's 0–10 judgment of the last answer.
type ScoreToken struct {
	Score int
}

// CompletionToken signals the interview is over.
type CompletionToken struct {
	Score  float64
	Passed bool
}

// PlainText is reply text outside any token.
type PlainText struct {
	Text string
}

func (ScoreToken) segment()      {}
func (CompletionToken) segment() {}
func (PlainText) segment()       {}

var tokenRe = regexp.MustCompile(
	`(?i)SCORE\s*\|\s*(\d+)\s*/\s*10|INTERVIEW_COMPLETE\s*\|\s*(\d+(?:\.\d+)?)\s*/\s*10\s*\|\s*(true|false)`,
)

var spaceRe = regexp.MustCompile(`[ \t]+`)
var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// Result is a parsed reply.
type Result struct {
	Segments []Segment
	// Clean is the reply with all tokens removed.
	Clean string
}

// Parse splits a reply into text and token segments. Out-of-range tokens
// are dropped from the text but yield no segment. Parsing never fails.
func Parse(reply string) Result {
	var res Result
	var clean strings.Builder
	last := 0

	for _, m := range tokenRe.FindAllStringSubmatchIndex(reply, -1) {
		if text := reply[last:m[0]]; text != "" {
			res.Segments = append(res.Segments, PlainText{Text: text})
			clean.WriteString(text)
		}
		if tok, ok := decode(reply, m); ok {
			res.Segments = append(res.Segments, tok)
		}
		last = m[1]
	}
	if text := reply[last:]; text != "" {
		res.Segments = append(res.Segments, PlainText{Text: text})
		clean.WriteString(text)
	}

	res.Clean = tidy(clean.String())
	return res
}

func decode(s string, m []int) (Segment, bool) {
	if m[2] >= 0 {
		n, err := strconv.Atoi(s[m[2]:m[3]])
		if err != nil || n < 0 || n > 10 {
			return nil, false
		}
		return ScoreToken{Score: n}, true
	}
	f, err := strconv.ParseFloat(s[m[4]:m[5]], 64)
	if err != nil || f < 0 || f > 10 {
		return nil, false
	}
	return CompletionToken{
		Score:  f,
		Passed: strings.EqualFold(s[m[6]:m[7]], "true"),
	}, true
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(l, " "))
	}
	out := strings.Join(lines, "\n")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// Score returns the last score token in the reply.
func (r Result) Score() (int, bool) {
	for i := len(r.Segments) - 1; i >= 0; i-- {
		if t, ok := r.Segments[i].(ScoreToken); ok {
			return t.Score, true
		}
	}
	return 0, false
}

// Completion returns the completion token, if present.
func (r Result) Completion() (CompletionToken, bool) {
	for _, s := range r.Segments {
		if t, ok := s.(CompletionToken); ok {
			return t, true
		}
	}
	return CompletionToken{}, false
}
