package topics

import "strings"

// Topic is a subject area an interview question can probe.
type Topic struct {
	ID   string
	Name string
	// Category is the skill-gap baseline category the topic maps to.
	Category string
	// Indicators are lower-case phrases whose presence implies the topic.
	Indicators []string
}

// Baseline categories.
const (
	CategoryTechnical      = "technical"
	CategoryBehavioral     = "behavioral"
	CategoryProblemSolving = "problem_solving"
	CategorySystemDesign   = "system_design"
	CategoryCommunication  = "communication"
)

// GeneralID is the fallback topic when nothing else matches.
const GeneralID = "general"

var table = []Topic{
	{
		ID: "javascript", Name: "JavaScript", Category: CategoryTechnical,
		Indicators: []string{"javascript", "closure", "promise", "async", "await", "event loop", "prototype", "hoisting", "callback", "typescript"},
	},
	{
		ID: "react", Name: "React", Category: CategoryTechnical,
		Indicators: []string{"react", "component", "hook", "usestate", "useeffect", "props", "virtual dom", "redux", "jsx", "render"},
	},
	{
		ID: "python", Name: "Python", Category: CategoryTechnical,
		Indicators: []string{"python", "django", "flask", "decorator", "generator", "list comprehension", "gil", "pandas", "asyncio"},
	},
	{
		ID: "database", Name: "Database", Category: CategoryTechnical,
		Indicators: []string{"database", "sql", "index", "query", "transaction", "normalization", "join", "schema", "nosql", "acid"},
	},
	{
		ID: "system_design", Name: "System Design", Category: CategorySystemDesign,
		Indicators: []string{"system design", "scalab", "load balanc", "cache", "microservice", "architecture", "distributed", "throughput", "latency", "sharding"},
	},
	{
		ID: "behavioral", Name: "Behavioral", Category: CategoryBehavioral,
		Indicators: []string{"tell me about a time", "conflict", "team", "challenge", "mistake", "leadership", "deadline", "disagree", "feedback", "situation"},
	},
}

var general = Topic{
	ID: GeneralID, Name: "General", Category: CategoryTechnical,
	Indicators: []string{"example", "because", "approach", "experience", "result", "problem", "solution", "tradeoff"},
}

// All returns every specific topic in table order, followed by General.
func All() []Topic {
	out := make([]Topic, 0, len(table)+1)
	out = append(out, table...)
	return append(out, general)
}

// Get returns the topic for id. Unknown ids resolve to General.
func Get(id string) Topic {
	for _, t := range table {
		if t.ID == id {
			return t
		}
	}
	return general
}

// ByName returns the topic whose display name matches name.
func ByName(name string) (Topic, bool) {
	for _, t := range All() {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}

// Detect returns every topic with an indicator contained in text.
// Returns General alone when nothing matches.
func Detect(text string) []Topic {
	lower := strings.ToLower(text)
	var found []Topic
	for _, t := range table {
		if ContainsAny(lower, t.Indicators) {
			found = append(found, t)
		}
	}
	if len(found) == 0 {
		return []Topic{general}
	}
	return found
}

// Keywords returns the deduplicated indicator phrases of the given topics.
func Keywords(ts []Topic) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range ts {
		for _, k := range t.Indicators {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// ContainsAny reports whether lower contains any of the phrases.
func ContainsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
