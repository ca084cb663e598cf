package skillgap

import (
	"strings"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/topics"
)

// Role levels.
const (
	RoleJunior = "junior"
	RoleMid    = "mid"
	RoleSenior = "senior"
)

// DefaultRoleLevel is used when no profile is supplied or the level is unknown.
const DefaultRoleLevel = RoleMid

var baselines = map[string]map[string]float64{
	RoleJunior: {
		topics.CategoryTechnical:      5,
		topics.CategoryBehavioral:     5,
		topics.CategoryProblemSolving: 5,
		topics.CategorySystemDesign:   3,
		topics.CategoryCommunication:  6,
	},
	RoleMid: {
		topics.CategoryTechnical:      7,
		topics.CategoryBehavioral:     6,
		topics.CategoryProblemSolving: 7,
		topics.CategorySystemDesign:   5,
		topics.CategoryCommunication:  7,
	},
	RoleSenior: {
		topics.CategoryTechnical:      8,
		topics.CategoryBehavioral:     7,
		topics.CategoryProblemSolving: 8,
		topics.CategorySystemDesign:   8,
		topics.CategoryCommunication:  8,
	},
}

// NormalizeRole maps an arbitrary level string to a known role level.
func NormalizeRole(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if _, ok := baselines[level]; ok {
		return level
	}
	return DefaultRoleLevel
}

// Baseline returns the expected average for a category at a role level.
func Baseline(roleLevel, category string) float64 {
	b := baselines[NormalizeRole(roleLevel)]
	if v, ok := b[category]; ok {
		return v
	}
	return b[topics.CategoryTechnical]
}

// TypeCategory maps a question type to its baseline category.
func TypeCategory(questionType string) string {
	switch questionType {
	case adaptive.TypeBehavioral:
		return topics.CategoryBehavioral
	case adaptive.TypeProblemSolving:
		return topics.CategoryProblemSolving
	case adaptive.TypeSystemDesign:
		return topics.CategorySystemDesign
	case adaptive.TypeSituational:
		return topics.CategoryCommunication
	default:
		return topics.CategoryTechnical
	}
}

var recommendations = map[string]string{
	"JavaScript":    "Revisit closures, the event loop and async/await; build a small project that exercises promises end to end.",
	"React":         "Practice component composition and hooks; explain re-render behavior and state management trade-offs.",
	"Python":        "Review generators, decorators and the data model; solve practice problems using idiomatic Python.",
	"Database":      "Study indexing, query plans and transaction isolation; normalize a schema and explain the trade-offs.",
	"System Design": "Work through classic design exercises covering caching, load balancing, partitioning and failure modes.",
	"Behavioral":    "Prepare STAR stories for conflict, failure and leadership; rehearse them with measurable outcomes.",
	"General":       "Structure answers around a concrete example and explain the reasoning behind each decision.",
}

// Recommendation returns the canned improvement advice for a topic.
func Recommendation(topic string) string {
	if r, ok := recommendations[topic]; ok {
		return r
	}
	return recommendations["General"]
}
