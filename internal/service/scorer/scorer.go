package scorer

import (
	"github.com/alanyang/ticket-router/internal/domain/agent"
	"github.com/alanyang/ticket-router/internal/domain/tag"
)

const (
	// SkillWeight multiplies the proficiency of every matched skill.
	SkillWeight = 3
	// LoadWeight multiplies the agent's snapshot load.
	LoadWeight = 2
)

// NormalizedSkills maps each skill name of a to its tag. When two names
// normalize to the same tag the later entry wins.
func NormalizedSkills(a agent.Agent) map[tag.Tag]float64 {
	skills := make(map[tag.Tag]float64, len(a.Skills))
	for _, s := range a.Skills {
		skills[tag.Normalize(s.Name)] = s.Level
	}
	return skills
}

// Score rates how well a suits a ticket with the given tags and returns the
// tags that matched one of its skills, in ascending order.
//
//	score = sum(level*3 for matched tags) + experience - current_load*2
//
// Only the agent's supplied CurrentLoad is used here; live load tracked
// during a batch is applied by the assigner on top of this value.
func Score(a agent.Agent, tags tag.Set) (float64, []tag.Tag) {
	skills := NormalizedSkills(a)

	var score float64
	matched := []tag.Tag{}
	for _, t := range tags.Sorted() {
		level, ok := skills[t]
		if !ok {
			continue
		}
		score += level * SkillWeight
		matched = append(matched, t)
	}

	score += a.ExperienceLevel
	score -= float64(a.CurrentLoad * LoadWeight)
	return score, matched
}
