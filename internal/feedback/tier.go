package feedback

// Tier is a performance band for the final score.
type Tier struct {
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	// Min is the inclusive lower bound of the band.
	Min float64 `json:"min"`
}

var tiers = []Tier{
	{Name: "Exceptional", Emoji: "🌟", Min: 9, Description: "You performed at a level that would stand out in a real interview loop."},
	{Name: "Strong", Emoji: "💪", Min: 7.5, Description: "You showed solid command of the material with only minor gaps."},
	{Name: "Competent", Emoji: "👍", Min: 6, Description: "You handled most questions well but need more depth in places."},
	{Name: "Developing", Emoji: "📈", Min: 4, Description: "You have a foundation to build on, with several areas that need focused practice."},
	{Name: "Beginner", Emoji: "🌱", Min: 0, Description: "You are early in your preparation; consistent practice on the fundamentals will pay off quickly."},
}

// TierFor returns the band containing score.
func TierFor(score float64) Tier {
	for _, t := range tiers {
		if score >= t.Min {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

var tierGoals = map[string][]string{
	"Exceptional": {
		"Mentor others or write about your approach to sharpen your explanations further",
		"Target senior-level system design and leadership questions",
	},
	"Strong": {
		"Close the remaining gaps with deliberate practice on your weakest topics",
		"Practice explaining trade-offs under time pressure",
	},
	"Competent": {
		"Build a portfolio project that exercises your weaker topics end to end",
		"Schedule a weekly mock interview to build consistency",
	},
	"Developing": {
		"Follow a structured course for each critical gap before the next interview",
		"Prepare five STAR stories and rehearse them aloud",
	},
	"Beginner": {
		"Work through the fundamentals of your target stack with hands-on exercises",
		"Start with short, untimed practice answers before moving to mock interviews",
	},
}
