package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/taxonomy"
)

// Reason thresholds. The numeric scores are authoritative; these strings
// are advisory and only need to be deterministic.
const (
	reasonProximityHigh    = 0.8
	reasonSkillHigh        = 0.8
	reasonReputationHigh   = 0.9
	reasonResponseHigh     = 0.8
	reasonHistoryHigh      = 0.9
	reasonAvailabilityHigh = 0.8
	reasonBudgetHigh       = 0.8

	suggestSkillLow     = 0.5
	suggestProximityLow = 0.3
	suggestResponseLow  = 0.5
)

// reasons derives human-readable strengths from the breakdown.
func reasons(b Breakdown) []string {
	var out []string
	if b.Proximity >= reasonProximityHigh {
		out = append(out, "very close to the task location")
	}
	if b.SkillMatch >= reasonSkillHigh {
		out = append(out, "skills strongly match the requirements")
	}
	if b.Availability >= reasonAvailabilityHigh {
		out = append(out, "available right now")
	}
	if b.Reputation >= reasonReputationHigh {
		out = append(out, "excellent reputation")
	}
	if b.Budget >= reasonBudgetHigh {
		out = append(out, "budget fits the preferred range")
	}
	if b.ResponseTime >= reasonResponseHigh {
		out = append(out, "responds quickly")
	}
	if b.History >= reasonHistoryHigh {
		out = append(out, "outstanding completion history")
	}
	return out
}

// suggestions derives improvement hints, including the concrete skills
// missing from the user's profile when the skill match is weak.
func (e *Engine) suggestions(b Breakdown, user *profile.UserProfile, task *profile.TaskProfile) []string {
	var out []string

	if b.SkillMatch < suggestSkillLow {
		if missing := e.missingSkills(user, task); len(missing) > 0 {
			out = append(out, fmt.Sprintf("add missing skills: %s", strings.Join(missing, ", ")))
		}
	}
	if b.Proximity <= suggestProximityLow && user.Location != nil && task.Location != nil {
		out = append(out, "task is far away; consider widening the travel range")
	}
	if !user.Availability.Available {
		out = append(out, "mark yourself available to receive matches")
	}
	if b.ResponseTime < suggestResponseLow {
		out = append(out, "faster responses improve match ranking")
	}

	return out
}

// missingSkills diffs required skill names against the user's skills,
// exact and taxonomy matches both counting as possessed. Sorted for
// deterministic output.
func (e *Engine) missingSkills(user *profile.UserProfile, task *profile.TaskProfile) []string {
	var missing []string
	for _, req := range task.RequiredSkills {
		if matched, _ := e.matchSkill(user, req.Name); !matched {
			missing = append(missing, taxonomy.Normalize(req.Name))
		}
	}
	sort.Strings(missing)
	return missing
}
