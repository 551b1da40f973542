// Package profile contains the matching domain records supplied by the
// caller: people offering help and tasks seeking it. The engine only ever
// reads these values; it never mutates them.
package profile

import (
	"time"

	"github.com/entraide/matchd/internal/domain/geo"
)

// ProficiencyTier orders skill mastery from beginner to expert.
type ProficiencyTier string

const (
	TierBeginner     ProficiencyTier = "beginner"
	TierIntermediate ProficiencyTier = "intermediate"
	TierAdvanced     ProficiencyTier = "advanced"
	TierExpert       ProficiencyTier = "expert"
)

// Score maps a proficiency tier to its scoring contribution.
// Unknown tiers score 0.2.
func (t ProficiencyTier) Score() float64 {
	switch t {
	case TierExpert:
		return 1.0
	case TierAdvanced:
		return 0.8
	case TierIntermediate:
		return 0.6
	case TierBeginner:
		return 0.4
	default:
		return 0.2
	}
}

// TrustTier classifies accumulated verified history.
// Ordering: new < verified < trusted < expert.
type TrustTier string

const (
	TrustNew      TrustTier = "new"
	TrustVerified TrustTier = "verified"
	TrustTrusted  TrustTier = "trusted"
	TrustExpert   TrustTier = "expert"
)

// Level returns the ordinal position of the tier.
func (t TrustTier) Level() int {
	switch t {
	case TrustExpert:
		return 3
	case TrustTrusted:
		return 2
	case TrustVerified:
		return 1
	default:
		return 0
	}
}

// Bonus returns the reputation bonus granted by the tier.
func (t TrustTier) Bonus() float64 {
	switch t {
	case TrustExpert:
		return 0.2
	case TrustTrusted:
		return 0.1
	case TrustVerified:
		return 0.05
	default:
		return 0
	}
}

// AvailabilityStatus is the user's current presence state.
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available"
	StatusBusy      AvailabilityStatus = "busy"
	StatusAway      AvailabilityStatus = "away"
)

// PriorityTier classifies task urgency.
type PriorityTier string

const (
	PriorityLow    PriorityTier = "low"
	PriorityMedium PriorityTier = "medium"
	PriorityHigh   PriorityTier = "high"
	PriorityUrgent PriorityTier = "urgent"
)

// ComplexityTier classifies the expected difficulty of a task.
type ComplexityTier string

const (
	ComplexitySimple   ComplexityTier = "simple"
	ComplexityModerate ComplexityTier = "moderate"
	ComplexityComplex  ComplexityTier = "complex"
)

// Skill is one ability a user offers.
type Skill struct {
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Tier     ProficiencyTier `json:"tier"`
	Verified bool            `json:"verified"`
}

// TimeSlot is a weekly recurring availability window. Hours are half-open:
// a slot 18..22 contains 18:00 through 21:59.
type TimeSlot struct {
	Day       time.Weekday `json:"day" validate:"gte=0,lte=6"`
	StartHour int          `json:"start_hour" validate:"gte=0,lte=23"`
	EndHour   int          `json:"end_hour" validate:"gte=1,lte=24"`
}

// Contains reports whether t falls inside the slot.
func (s TimeSlot) Contains(t time.Time) bool {
	return t.Weekday() == s.Day && t.Hour() >= s.StartHour && t.Hour() < s.EndHour
}

// Preferences capture what kinds of tasks a user wants to see.
type Preferences struct {
	MaxDistanceKm       float64    `json:"max_distance_km" validate:"gte=0"`
	PreferredCategories []string   `json:"preferred_categories"`
	MinBudget           float64    `json:"min_budget" validate:"gte=0"`
	// MaxBudget of 0 means no ceiling.
	MaxBudget float64    `json:"max_budget" validate:"gte=0"`
	TimeSlots []TimeSlot `json:"time_slots" validate:"dive"`
}

// InPreferredSlot reports whether t falls inside any preferred time slot.
func (p Preferences) InPreferredSlot(t time.Time) bool {
	for _, slot := range p.TimeSlots {
		if slot.Contains(t) {
			return true
		}
	}
	return false
}

// Stats aggregates a user's activity history.
type Stats struct {
	TasksCompleted      int       `json:"tasks_completed" validate:"gte=0"`
	TasksCreated        int       `json:"tasks_created" validate:"gte=0"`
	AverageRating       float64   `json:"average_rating" validate:"gte=0"`
	ResponseTimeMinutes float64   `json:"response_time_minutes" validate:"gte=0"`
	CompletionRate      float64   `json:"completion_rate" validate:"gte=0,lte=1"`
	Reliability         float64   `json:"reliability" validate:"gte=0"`
	LastActiveAt        time.Time `json:"last_active_at"`
}

// Availability is the user's current willingness to take tasks.
type Availability struct {
	Available          bool               `json:"available"`
	Status             AvailabilityStatus `json:"status"`
	AutoAcceptRadiusKm float64            `json:"auto_accept_radius_km" validate:"gte=0"`
}

// UserProfile is an actor who may complete tasks.
type UserProfile struct {
	ID           string       `json:"id" validate:"required"`
	Location     *geo.Point   `json:"location,omitempty" validate:"omitempty,finitepoint"`
	Skills       []Skill      `json:"skills" validate:"dive"`
	Preferences  Preferences  `json:"preferences"`
	Stats        Stats        `json:"stats"`
	Availability Availability `json:"availability"`
	// Reputation is conventionally 0-100 but unbounded above.
	Reputation float64   `json:"reputation" validate:"gte=0"`
	Trust      TrustTier `json:"trust"`
	CreatedAt  time.Time `json:"created_at"`
}

// RequiredSkill is one ability a task demands.
type RequiredSkill struct {
	Name      string          `json:"name" validate:"required"`
	Tier      ProficiencyTier `json:"tier"`
	Mandatory bool            `json:"mandatory"`
	// Weight is the relative importance among the task's requirements.
	Weight float64 `json:"weight" validate:"gte=0"`
}

// TaskProfile is a unit of work seeking a helper.
type TaskProfile struct {
	ID             string          `json:"id" validate:"required"`
	OwnerID        string          `json:"owner_id" validate:"required"`
	Location       *geo.Point      `json:"location,omitempty" validate:"omitempty,finitepoint"`
	Category       string          `json:"category" validate:"required"`
	RequiredSkills []RequiredSkill `json:"required_skills" validate:"dive"`
	BudgetCredits  float64         `json:"budget_credits" validate:"gte=0"`
	// EstimatedDuration is how long the task is expected to take.
	EstimatedDuration time.Duration  `json:"estimated_duration" validate:"gte=0"`
	Deadline          *time.Time     `json:"deadline,omitempty"`
	Priority          PriorityTier   `json:"priority"`
	Complexity        ComplexityTier `json:"complexity"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Expired reports whether the task's deadline has already passed at now.
func (t TaskProfile) Expired(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now)
}
