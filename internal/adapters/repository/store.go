// Package repository defines the recommendation store interface and its
// in-memory implementation. The engine only proposes objects; every
// state transition after creation goes through a store.
package repository

import (
	"context"
	"time"

	"github.com/entraide/matchd/internal/domain/recommend"
)

// Counts summarizes the stored records for operational views.
type Counts struct {
	Recommendations int `json:"recommendations"`
	Pending         int `json:"pending"`
	Accepted        int `json:"accepted"`
	Dismissed       int `json:"dismissed"`
	Expired         int `json:"expired"`
	Alerts          int `json:"alerts"`
}

// Store provides read/write access to recommendations and alerts.
type Store interface {
	// SaveRecommendations inserts freshly generated recommendations,
	// replacing any previous actionable recommendation for the same
	// (user, task) pair.
	SaveRecommendations(ctx context.Context, recs []recommend.Recommendation) error

	// Recommendation returns one record by id.
	// Returns ErrNotFound if the id is unknown.
	Recommendation(ctx context.Context, id string) (recommend.Recommendation, error)

	// PendingForUser returns the user's actionable recommendations,
	// highest score first. Expired and resolved ones are excluded.
	PendingForUser(ctx context.Context, userID string) ([]recommend.Recommendation, error)

	// MarkViewed, Accept and Dismiss transition one recommendation and
	// return the updated record. The mutual-exclusion and expiry rules
	// are enforced here.
	MarkViewed(ctx context.Context, id string) (recommend.Recommendation, error)
	Accept(ctx context.Context, id string) (recommend.Recommendation, error)
	Dismiss(ctx context.Context, id string) (recommend.Recommendation, error)

	// SaveAlerts inserts alerts, collapsing duplicates by content key.
	// Returns how many alerts were actually stored.
	SaveAlerts(ctx context.Context, alerts []recommend.ProximityAlert) (int, error)

	// AlertsForUser returns the user's stored alerts, newest first.
	AlertsForUser(ctx context.Context, userID string) ([]recommend.ProximityAlert, error)

	// Counts reports store-wide totals as of now.
	Counts(ctx context.Context, now time.Time) Counts
}
