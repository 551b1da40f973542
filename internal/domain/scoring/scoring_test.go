package scoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/entraide/matchd/internal/domain/geo"
	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// fixedNow keeps availability scoring deterministic across test runs.
// 2026-01-06 is a Tuesday.
var fixedNow = time.Date(2026, 1, 6, 19, 0, 0, 0, time.UTC)

func newEngine() *scoring.Engine {
	return scoring.NewEngine(scoring.WithClock(func() time.Time { return fixedNow }))
}

func helper() *profile.UserProfile {
	return &profile.UserProfile{
		ID:       "user-1",
		Location: &geo.Point{Lat: 48.8566, Lon: 2.3522},
		Skills: []profile.Skill{
			{Name: "plomberie", Category: "home-repair", Tier: profile.TierExpert, Verified: true},
		},
		Preferences: profile.Preferences{
			MaxDistanceKm: 25,
			MinBudget:     10,
			MaxBudget:     100,
		},
		Stats: profile.Stats{
			TasksCompleted:      12,
			CompletionRate:      0.9,
			ResponseTimeMinutes: 20,
			LastActiveAt:        fixedNow,
		},
		Availability: profile.Availability{Available: true, Status: profile.StatusAvailable},
		Reputation:   80,
		Trust:        profile.TrustTrusted,
		CreatedAt:    fixedNow.Add(-90 * 24 * time.Hour),
	}
}

func chore() *profile.TaskProfile {
	deadline := fixedNow.Add(48 * time.Hour)
	return &profile.TaskProfile{
		ID:       "task-1",
		OwnerID:  "user-2",
		Location: &geo.Point{Lat: 48.8566, Lon: 2.3522},
		Category: "home-repair",
		RequiredSkills: []profile.RequiredSkill{
			{Name: "plomberie", Tier: profile.TierBeginner, Mandatory: true, Weight: 1},
		},
		BudgetCredits:     55,
		EstimatedDuration: 2 * time.Hour,
		Deadline:          &deadline,
		Priority:          profile.PriorityMedium,
		Complexity:        profile.ComplexityModerate,
		CreatedAt:         fixedNow.Add(-time.Hour),
	}
}

func score(e *scoring.Engine, u *profile.UserProfile, t *profile.TaskProfile) (scoring.MatchResult, error) {
	return e.Score(context.Background(), u, t, scoring.DefaultWeights())
}

func TestProximityFactor(t *testing.T) {
	Convey("Given a user and task at varying distances", t, func() {
		e := newEngine()

		// Roughly 111.19 km per degree of latitude.
		cases := []struct {
			latOffset float64
			expected  float64
		}{
			{0.0, 1.0},     // same point
			{0.005, 1.0},   // ~0.6 km
			{0.03, 0.9},    // ~3.3 km
			{0.08, 0.7},    // ~8.9 km
			{0.2, 0.5},     // ~22 km
			{0.4, 0.3},     // ~44 km
			{1.0, 0.1},     // ~111 km
		}

		Convey("Then the step function should be applied", func() {
			for _, c := range cases {
				u := helper()
				tk := chore()
				u.Location = &geo.Point{Lat: 48.0, Lon: 2.0}
				tk.Location = &geo.Point{Lat: 48.0 + c.latOffset, Lon: 2.0}
				res, err := score(e, u, tk)
				So(err, ShouldBeNil)
				So(res.Breakdown.Proximity, ShouldEqual, c.expected)
			}
		})

		Convey("And increasing distance should never increase the sub-score", func() {
			prev := 2.0
			for _, c := range cases {
				u := helper()
				tk := chore()
				u.Location = &geo.Point{Lat: 48.0, Lon: 2.0}
				tk.Location = &geo.Point{Lat: 48.0 + c.latOffset, Lon: 2.0}
				res, err := score(e, u, tk)
				So(err, ShouldBeNil)
				So(res.Breakdown.Proximity, ShouldBeLessThanOrEqualTo, prev)
				prev = res.Breakdown.Proximity
			}
		})

		Convey("When either party lacks coordinates", func() {
			u := helper()
			u.Location = nil
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)

			Convey("Then proximity should be the neutral 0.5", func() {
				So(res.Breakdown.Proximity, ShouldEqual, 0.5)
			})
		})
	})
}

func TestSkillFactor(t *testing.T) {
	Convey("Given skill requirements", t, func() {
		e := newEngine()

		Convey("A task with no required skills should score 0.8", func() {
			tk := chore()
			tk.RequiredSkills = nil
			res, err := score(e, helper(), tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.SkillMatch, ShouldEqual, 0.8)
		})

		Convey("An exact match should contribute the user's tier score", func() {
			res, err := score(e, helper(), chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.SkillMatch, ShouldEqual, 1.0) // expert
		})

		Convey("Name matching should be case-insensitive", func() {
			tk := chore()
			tk.RequiredSkills[0].Name = "PLOMBERIE"
			res, err := score(e, helper(), tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.SkillMatch, ShouldEqual, 1.0)
		})

		Convey("A related skill should match through the taxonomy", func() {
			u := helper()
			u.Skills = []profile.Skill{{Name: "bricolage", Tier: profile.TierAdvanced}}
			tk := chore()
			tk.RequiredSkills = []profile.RequiredSkill{{Name: "réparation", Mandatory: true}}
			res, err := score(e, u, tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.SkillMatch, ShouldEqual, 0.8) // advanced
		})

		Convey("Unmatched requirements should contribute zero", func() {
			u := helper()
			u.Skills = nil
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.SkillMatch, ShouldEqual, 0)
		})

		Convey("Multiple requirements should average by weight", func() {
			u := helper()
			u.Skills = []profile.Skill{{Name: "plomberie", Tier: profile.TierExpert}}
			tk := chore()
			tk.RequiredSkills = []profile.RequiredSkill{
				{Name: "plomberie", Weight: 1}, // matched, 1.0
				{Name: "jardinage", Weight: 1}, // unmatched, 0
			}
			res, err := score(e, u, tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.SkillMatch, ShouldEqual, 0.5)
		})
	})
}

func TestAvailabilityFactor(t *testing.T) {
	Convey("Given availability states", t, func() {
		e := newEngine()

		Convey("An expired task should score zero", func() {
			tk := chore()
			past := fixedNow.Add(-time.Hour)
			tk.Deadline = &past
			res, err := score(e, helper(), tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.Availability, ShouldEqual, 0)
		})

		Convey("An unavailable user should score 0.1", func() {
			u := helper()
			u.Availability.Available = false
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.Availability, ShouldEqual, 0.1)
		})

		Convey("An available status should add 0.3 on the 0.5 base", func() {
			res, err := score(e, helper(), chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.Availability, ShouldEqual, 0.8)
		})

		Convey("A busy status should stay at the base", func() {
			u := helper()
			u.Availability.Status = profile.StatusBusy
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.Availability, ShouldEqual, 0.5)
		})

		Convey("A preferred time slot should add 0.2", func() {
			u := helper()
			u.Preferences.TimeSlots = []profile.TimeSlot{
				{Day: time.Tuesday, StartHour: 18, EndHour: 22},
			}
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.Availability, ShouldEqual, 1.0)
		})
	})
}

func TestReputationFactor(t *testing.T) {
	Convey("Given reputation and trust tiers", t, func() {
		e := newEngine()

		Convey("Reputation should normalize by 100 plus the trust bonus", func() {
			u := helper()
			u.Reputation = 80
			u.Trust = profile.TrustTrusted
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.Reputation, ShouldAlmostEqual, 0.9, 1e-9)
		})

		Convey("The sub-score should cap at 1", func() {
			u := helper()
			u.Reputation = 95
			u.Trust = profile.TrustExpert
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.Reputation, ShouldEqual, 1.0)
		})

		Convey("A new user should get no bonus", func() {
			u := helper()
			u.Reputation = 50
			u.Trust = profile.TrustNew
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.Reputation, ShouldAlmostEqual, 0.5, 1e-9)
		})
	})
}

func TestBudgetFactor(t *testing.T) {
	Convey("Given budget bands", t, func() {
		e := newEngine()

		Convey("A budget below the minimum should score 0.2", func() {
			tk := chore()
			tk.BudgetCredits = 5
			res, err := score(e, helper(), tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.Budget, ShouldEqual, 0.2)
		})

		Convey("A budget above the ceiling should score 0.3", func() {
			tk := chore()
			tk.BudgetCredits = 150
			res, err := score(e, helper(), tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.Budget, ShouldEqual, 0.3)
		})

		Convey("The midpoint of the range should score 1.0", func() {
			tk := chore()
			tk.BudgetCredits = 55 // midpoint of [10, 100]
			res, err := score(e, helper(), tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.Budget, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("The edges of the range should score 0.5", func() {
			for _, budget := range []float64{10, 100} {
				tk := chore()
				tk.BudgetCredits = budget
				res, err := score(e, helper(), tk)
				So(err, ShouldBeNil)
				So(res.Breakdown.Budget, ShouldAlmostEqual, 0.5, 1e-9)
			}
		})

		Convey("No ceiling should score 0.8", func() {
			u := helper()
			u.Preferences.MaxBudget = 0
			res, err := score(e, u, chore())
			So(err, ShouldBeNil)
			So(res.Breakdown.Budget, ShouldEqual, 0.8)
		})
	})
}

func TestResponseTimeFactor(t *testing.T) {
	Convey("Given response time buckets", t, func() {
		e := newEngine()
		cases := []struct {
			minutes  float64
			expected float64
		}{
			{20, 1.0}, {30, 1.0}, {45, 0.8}, {60, 0.8},
			{90, 0.6}, {180, 0.4}, {400, 0.2},
		}

		Convey("Then each bucket should map to its score", func() {
			for _, c := range cases {
				u := helper()
				u.Stats.ResponseTimeMinutes = c.minutes
				res, err := score(e, u, chore())
				So(err, ShouldBeNil)
				So(res.Breakdown.ResponseTime, ShouldEqual, c.expected)
			}
		})
	})
}

func TestHistoryFactor(t *testing.T) {
	Convey("Given completion history", t, func() {
		e := newEngine()
		cases := []struct {
			completed int
			rate      float64
			expected  float64
		}{
			{0, 0.5, 0.5},
			{5, 0.5, 0.52},
			{20, 0.5, 0.55},
			{50, 0.5, 0.6},
			{100, 0.95, 1.0}, // capped
		}

		Convey("Then the experience bonus should apply", func() {
			for _, c := range cases {
				u := helper()
				u.Stats.TasksCompleted = c.completed
				u.Stats.CompletionRate = c.rate
				res, err := score(e, u, chore())
				So(err, ShouldBeNil)
				So(res.Breakdown.History, ShouldAlmostEqual, c.expected, 1e-9)
			}
		})
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given the full engine", t, func() {
		e := newEngine()

		Convey("All sub-scores and the aggregate should stay in [0,1]", func() {
			res, err := score(e, helper(), chore())
			So(err, ShouldBeNil)
			for _, v := range []float64{
				res.Breakdown.Proximity, res.Breakdown.SkillMatch,
				res.Breakdown.Availability, res.Breakdown.Reputation,
				res.Breakdown.Budget, res.Breakdown.ResponseTime,
				res.Breakdown.History, res.Exact, res.Score,
			} {
				So(v, ShouldBeBetweenOrEqual, 0, 1)
			}
		})

		Convey("Scoring the same pair twice should be bit-identical", func() {
			r1, err1 := score(e, helper(), chore())
			r2, err2 := score(e, helper(), chore())
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(r1.Exact, ShouldEqual, r2.Exact)
			So(r1.Breakdown, ShouldResemble, r2.Breakdown)
		})

		Convey("The presentation score should be rounded to two decimals", func() {
			res, err := score(e, helper(), chore())
			So(err, ShouldBeNil)
			So(res.Score*100, ShouldAlmostEqual, float64(int(res.Score*100+0.5)), 1e-9)
		})

		Convey("Weight overrides should steer the aggregate", func() {
			w := scoring.Weights{SkillMatch: 1}
			res, err := e.Score(context.Background(), helper(), chore(), w)
			So(err, ShouldBeNil)
			So(res.Exact, ShouldAlmostEqual, res.Breakdown.SkillMatch, 1e-9)
		})

		Convey("Invalid weights should fail fast", func() {
			_, err := e.Score(context.Background(), helper(), chore(), scoring.Weights{})
			So(err, ShouldWrap, scoring.ErrInvalidWeights)
		})

		Convey("Invalid profiles should fail fast", func() {
			u := helper()
			u.ID = ""
			_, err := e.Score(context.Background(), u, chore(), scoring.DefaultWeights())
			So(err, ShouldWrap, profile.ErrInvalidUserProfile)

			tk := chore()
			tk.BudgetCredits = -1
			_, err = e.Score(context.Background(), helper(), tk, scoring.DefaultWeights())
			So(err, ShouldWrap, profile.ErrInvalidTaskProfile)
		})

		Convey("A cancelled context should stop the call", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := e.Score(ctx, helper(), chore(), scoring.DefaultWeights())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestReferenceScenarios(t *testing.T) {
	Convey("Given the reference scenarios", t, func() {
		e := newEngine()

		Convey("Same point, no skills required, budget in range, future deadline", func() {
			u := helper()
			u.Skills = nil
			tk := chore()
			tk.RequiredSkills = nil

			res, err := score(e, u, tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.Proximity, ShouldEqual, 1.0)
			So(res.Breakdown.SkillMatch, ShouldEqual, 0.8)
			So(res.Exact, ShouldBeGreaterThanOrEqualTo, 0.7)
		})

		Convey("Expert plumber five kilometers away", func() {
			u := helper()
			u.Location = &geo.Point{Lat: 48.0, Lon: 2.0}
			u.Reputation = 80
			u.Trust = profile.TrustTrusted
			u.Stats.ResponseTimeMinutes = 20
			tk := chore()
			tk.Location = &geo.Point{Lat: 48.044, Lon: 2.0} // ~4.9 km north

			res, err := score(e, u, tk)
			So(err, ShouldBeNil)
			So(res.Breakdown.Proximity, ShouldEqual, 0.9)
			So(res.Breakdown.SkillMatch, ShouldEqual, 1.0)
			So(res.Breakdown.Reputation, ShouldAlmostEqual, 0.9, 1e-9)
			So(res.Breakdown.ResponseTime, ShouldEqual, 1.0)
			So(res.Exact, ShouldBeGreaterThanOrEqualTo, 0.8)
		})
	})
}

func TestReasonsAndSuggestions(t *testing.T) {
	Convey("Given scored pairs", t, func() {
		e := newEngine()

		Convey("Strong factors should produce reasons", func() {
			res, err := score(e, helper(), chore())
			So(err, ShouldBeNil)
			So(res.Reasons, ShouldContain, "very close to the task location")
			So(res.Reasons, ShouldContain, "skills strongly match the requirements")
			So(res.Reasons, ShouldContain, "responds quickly")
		})

		Convey("Missing skills should be named in suggestions", func() {
			u := helper()
			u.Skills = nil
			tk := chore()
			tk.RequiredSkills = []profile.RequiredSkill{
				{Name: "Jardinage", Mandatory: true},
				{Name: "plomberie", Mandatory: true},
			}
			res, err := score(e, u, tk)
			So(err, ShouldBeNil)
			So(res.Suggestions, ShouldContain, "add missing skills: jardinage, plomberie")
		})

		Convey("Reason text should be deterministic", func() {
			r1, _ := score(e, helper(), chore())
			r2, _ := score(e, helper(), chore())
			So(r1.Reasons, ShouldResemble, r2.Reasons)
			So(r1.Suggestions, ShouldResemble, r2.Suggestions)
		})
	})
}
