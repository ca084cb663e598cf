package analysis

import (
	"strings"
	"unicode"
)

// Words splits text into lower-case words. Apostrophes inside words are kept.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// WordCount returns the number of words in text.
func WordCount(text string) int {
	return len(Words(text))
}

// SentenceCount counts sentence-terminated segments that contain a word.
// A trailing fragment without terminal punctuation counts as a sentence.
func SentenceCount(text string) int {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	n := 0
	for _, p := range parts {
		if WordCount(p) > 0 {
			n++
		}
	}
	return n
}

// normalized returns the word sequence padded with spaces so phrase
// lookups only match on word boundaries.
func normalized(text string) string {
	words := Words(text)
	if len(words) == 0 {
		return ""
	}
	return " " + strings.Join(words, " ") + " "
}

// countPhrases counts whole-word occurrences of each phrase in norm.
// Adjacent repeats share their separating space, so "um um" counts twice.
func countPhrases(norm string, phrases []string) int {
	if norm == "" {
		return 0
	}
	total := 0
	for _, p := range phrases {
		needle := " " + p + " "
		for i := 0; ; {
			j := strings.Index(norm[i:], needle)
			if j < 0 {
				break
			}
			total++
			i += j + len(needle) - 1
		}
	}
	return total
}

// hasPhrase reports whether any phrase occurs in norm on word boundaries.
func hasPhrase(norm string, phrases []string) bool {
	return countPhrases(norm, phrases) > 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
