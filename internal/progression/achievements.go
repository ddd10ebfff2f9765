package progression

// Achievement is a milestone shown next to the user's progress.
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

type achievementRule struct {
	name        string
	description string
	icon        string
	unlocked    func(activities, streak, level int) bool
}

var achievementRules = []achievementRule{
	{"First Step", "Log your first activity", "fa-shoe-prints", func(a, _, _ int) bool { return a >= 1 }},
	{"Dedication", "Log 10 activities", "fa-medal", func(a, _, _ int) bool { return a >= 10 }},
	{"Consistent", "Log 50 activities", "fa-trophy", func(a, _, _ int) bool { return a >= 50 }},
	{"Marathoner", "Log 100 activities", "fa-running", func(a, _, _ int) bool { return a >= 100 }},
	{"Perfect Week", "Reach a 7 day streak", "fa-fire", func(_, s, _ int) bool { return s >= 7 }},
	{"Unstoppable Month", "Reach a 30 day streak", "fa-fire-alt", func(_, s, _ int) bool { return s >= 30 }},
	{"Warrior", "Reach level 5", "fa-shield-alt", func(_, _, l int) bool { return l >= 5 }},
	{"Champion", "Reach level 10", "fa-crown", func(_, _, l int) bool { return l >= 10 }},
	{"Legend", "Reach level 25", "fa-gem", func(_, _, l int) bool { return l >= 25 }},
}

// Achievements returns every achievement with its unlocked flag.
func Achievements(activityCount, streak, level int) []Achievement {
	achievements := make([]Achievement, 0, len(achievementRules))
	for _, rule := range achievementRules {
		achievements = append(achievements, Achievement{
			Name:        rule.name,
			Description: rule.description,
			Icon:        rule.icon,
			Unlocked:    rule.unlocked(activityCount, streak, level),
		})
	}
	return achievements
}
