// Package profile turns resume or self-description text into the candidate
// profile that seeds an interview: the role level, the starting difficulty
// and the topics worth probing.
package profile

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/skillgap"
	"github.com/abhisek/interviewiz/internal/topics"
)

// Profile is what the interview knows about the candidate up front.
type Profile struct {
	Name            string   `json:"name,omitempty"`
	RoleLevel       string   `json:"role_level"`
	YearsExperience int      `json:"years_experience"`
	Skills          []string `json:"skills"`
	Topics          []string `json:"topics"`
	Summary         string   `json:"summary,omitempty"`
}

// StartLevel maps the role level to the first question's difficulty.
// A nil profile starts at Easy.
func (p *Profile) StartLevel() int {
	if p == nil {
		return adaptive.DefaultStartLevel
	}
	switch skillgap.NormalizeRole(p.RoleLevel) {
	case skillgap.RoleJunior:
		return adaptive.LevelEasy
	case skillgap.RoleSenior:
		return adaptive.LevelHard
	default:
		return adaptive.LevelMedium
	}
}

// Role returns the normalized role level, mid for a nil profile.
func (p *Profile) Role() string {
	if p == nil {
		return skillgap.DefaultRoleLevel
	}
	return skillgap.NormalizeRole(p.RoleLevel)
}

var skillVocabulary = []string{
	"go", "golang", "python", "java", "javascript", "typescript", "rust", "c++", "c#", "ruby", "php", "kotlin", "swift",
	"react", "vue", "angular", "node", "django", "flask", "spring",
	"sql", "postgresql", "mysql", "mongodb", "redis", "kafka", "graphql", "grpc",
	"docker", "kubernetes", "terraform", "aws", "gcp", "azure", "linux",
}

var (
	yearsPattern = regexp.MustCompile(`(\d{1,2})\+?\s*(?:years?|yrs?)`)
	seniorWords  = []string{"senior", "staff engineer", "principal", "tech lead", "team lead", "architect"}
	juniorWords  = []string{"junior", "intern", "graduate", "entry level", "entry-level", "bootcamp", "student"}
	midWords     = []string{"mid-level", "mid level", "intermediate"}
)

// Extract builds a profile from free text with keyword heuristics. It never
// fails; empty text yields a mid-level profile with no skills.
func Extract(text string) *Profile {
	lower := strings.ToLower(text)
	p := &Profile{
		Name:            guessName(text),
		YearsExperience: yearsOfExperience(lower),
		Skills:          skills(lower),
	}
	p.RoleLevel = roleLevel(lower, p.YearsExperience)

	for _, t := range topics.Detect(lower) {
		if t.ID != topics.GeneralID {
			p.Topics = append(p.Topics, t.ID)
		}
	}
	return p
}

func yearsOfExperience(lower string) int {
	best := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(lower, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best {
			best = n
		}
	}
	return best
}

func roleLevel(lower string, years int) string {
	switch {
	case topics.ContainsAny(lower, seniorWords):
		return skillgap.RoleSenior
	case topics.ContainsAny(lower, juniorWords):
		return skillgap.RoleJunior
	case topics.ContainsAny(lower, midWords):
		return skillgap.RoleMid
	case years >= 5:
		return skillgap.RoleSenior
	case years >= 2:
		return skillgap.RoleMid
	case years > 0:
		return skillgap.RoleJunior
	default:
		return skillgap.DefaultRoleLevel
	}
}

func skills(lower string) []string {
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;:()[]/|", r)
	})
	for i, tok := range tokens {
		tokens[i] = strings.TrimRight(tok, ".!?")
	}

	var out []string
	for _, skill := range skillVocabulary {
		if slices.Contains(tokens, skill) {
			out = append(out, skill)
		}
	}
	return out
}

// guessName takes the first line when it looks like a personal name.
func guessName(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return ""
	}
	for _, w := range words {
		r := []rune(w)
		if !unicode.IsUpper(r[0]) {
			return ""
		}
		for _, c := range r {
			if !unicode.IsLetter(c) && c != '-' && c != '\'' && c != '.' {
				return ""
			}
		}
	}
	return strings.Join(words, " ")
}
