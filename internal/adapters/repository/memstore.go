package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/entraide/matchd/internal/domain/dedupe"
	"github.com/entraide/matchd/internal/domain/recommend"
	"github.com/entraide/matchd/pkg/metrics"
)

// MemoryStore keeps recommendations and alerts in process memory behind
// a single lock. Alert duplicates are collapsed through a bounded
// content-key deduper.
type MemoryStore struct {
	mu        sync.RWMutex
	recs      map[string]*recommend.Recommendation
	recsUser  map[string][]string
	pairIdx   map[string]string // userID|taskID -> recommendation id
	alerts    map[string]recommend.ProximityAlert
	alertUser map[string][]string
	alertKeys dedupe.Deduper
	now       func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		recs:      make(map[string]*recommend.Recommendation),
		recsUser:  make(map[string][]string),
		pairIdx:   make(map[string]string),
		alerts:    make(map[string]recommend.ProximityAlert),
		alertUser: make(map[string][]string),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.alertKeys == nil {
		s.alertKeys = dedupe.NewMemory()
	}
	return s
}

// SaveRecommendations inserts recommendations. An actionable record for
// the same (user, task) pair is superseded; resolved records stay for
// history.
func (s *MemoryStore) SaveRecommendations(_ context.Context, recs []recommend.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range recs {
		rec := recs[i]
		if rec.ID == "" || rec.UserID == "" || rec.TaskID == "" {
			return fmt.Errorf("%w: recommendation missing id, user or task", ErrInvalidInput)
		}
		pair := rec.UserID + "|" + rec.TaskID
		if oldID, ok := s.pairIdx[pair]; ok {
			if old := s.recs[oldID]; old != nil && old.Actionable(s.now()) {
				s.dropLocked(oldID)
			}
		}
		s.recs[rec.ID] = &rec
		s.recsUser[rec.UserID] = append(s.recsUser[rec.UserID], rec.ID)
		s.pairIdx[pair] = rec.ID
	}
	metrics.UpdatePendingRecommendations(s.pendingLocked())
	return nil
}

// Recommendation returns one record by id.
func (s *MemoryStore) Recommendation(_ context.Context, id string) (recommend.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[id]
	if !ok {
		return recommend.Recommendation{}, fmt.Errorf("recommendation %q: %w", id, ErrNotFound)
	}
	return *rec, nil
}

// PendingForUser returns the user's actionable recommendations ordered
// by score descending, newest first on ties.
func (s *MemoryStore) PendingForUser(_ context.Context, userID string) ([]recommend.Recommendation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]recommend.Recommendation, 0)
	for _, id := range s.recsUser[userID] {
		rec := s.recs[id]
		if rec == nil || !rec.Actionable(now) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MarkViewed transitions a recommendation to viewed.
func (s *MemoryStore) MarkViewed(ctx context.Context, id string) (recommend.Recommendation, error) {
	return s.transition(ctx, id, "view", (*recommend.Recommendation).View)
}

// Accept resolves a recommendation positively.
func (s *MemoryStore) Accept(ctx context.Context, id string) (recommend.Recommendation, error) {
	return s.transition(ctx, id, "accept", (*recommend.Recommendation).Accept)
}

// Dismiss resolves a recommendation negatively.
func (s *MemoryStore) Dismiss(ctx context.Context, id string) (recommend.Recommendation, error) {
	return s.transition(ctx, id, "dismiss", (*recommend.Recommendation).Dismiss)
}

func (s *MemoryStore) transition(_ context.Context, id, action string, apply func(*recommend.Recommendation, time.Time) error) (recommend.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok {
		return recommend.Recommendation{}, fmt.Errorf("recommendation %q: %w", id, ErrNotFound)
	}
	if err := apply(rec, s.now()); err != nil {
		return recommend.Recommendation{}, err
	}
	metrics.RecordRecommendationAction(action)
	metrics.UpdatePendingRecommendations(s.pendingLocked())
	return *rec, nil
}

// SaveAlerts stores alerts, collapsing content duplicates. Storage is
// idempotent by content, not by call count.
func (s *MemoryStore) SaveAlerts(ctx context.Context, alerts []recommend.ProximityAlert) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := 0
	for i := range alerts {
		alert := alerts[i]
		if alert.ID == "" || alert.UserID == "" || alert.TaskID == "" {
			return stored, fmt.Errorf("%w: alert missing id, user or task", ErrInvalidInput)
		}
		if s.alertKeys.SeenAndRecord(ctx, alert.ContentKey()) {
			metrics.RecordAlertDeduplicated()
			continue
		}
		s.alerts[alert.ID] = alert
		s.alertUser[alert.UserID] = append(s.alertUser[alert.UserID], alert.ID)
		stored++
	}
	return stored, nil
}

// AlertsForUser returns the user's alerts, newest first.
func (s *MemoryStore) AlertsForUser(_ context.Context, userID string) ([]recommend.ProximityAlert, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]recommend.ProximityAlert, 0, len(s.alertUser[userID]))
	for _, id := range s.alertUser[userID] {
		out = append(out, s.alerts[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Counts reports store-wide totals as of now.
func (s *MemoryStore) Counts(_ context.Context, now time.Time) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := Counts{Recommendations: len(s.recs), Alerts: len(s.alerts)}
	for _, rec := range s.recs {
		switch {
		case rec.State == recommend.StateAccepted:
			c.Accepted++
		case rec.State == recommend.StateDismissed:
			c.Dismissed++
		case rec.Expired(now):
			c.Expired++
		default:
			c.Pending++
		}
	}
	return c
}

// dropLocked removes a recommendation and its index entries. Callers
// hold s.mu.
func (s *MemoryStore) dropLocked(id string) {
	rec, ok := s.recs[id]
	if !ok {
		return
	}
	delete(s.recs, id)
	delete(s.pairIdx, rec.UserID+"|"+rec.TaskID)
	ids := s.recsUser[rec.UserID]
	for i, candidate := range ids {
		if candidate == id {
			s.recsUser[rec.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

func (s *MemoryStore) pendingLocked() int {
	now := s.now()
	pending := 0
	for _, rec := range s.recs {
		if rec.Actionable(now) {
			pending++
		}
	}
	return pending
}
