package recommend

import (
	"fmt"
	"time"
)

// ProximityAlert notifies a user that a task exists within the
// configured radius. The generator is stateless and re-emits the same
// alert for the same inputs; storage collapses duplicates by content.
type ProximityAlert struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TaskID     string    `json:"task_id"`
	DistanceKm float64   `json:"distance_km"`
	CreatedAt  time.Time `json:"created_at"`
	Sent       bool      `json:"sent"`
	Viewed     bool      `json:"viewed"`
}

// ContentKey identifies an alert by user, task and approximate distance
// so storage can deduplicate regenerated alerts.
func (a *ProximityAlert) ContentKey() string {
	return fmt.Sprintf("%s|%s|%.1f", a.UserID, a.TaskID, a.DistanceKm)
}
