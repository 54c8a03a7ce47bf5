package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a one-time client review of a completed order. At most one
// rating exists per order (unique order_id); ratings are never updated or
// deleted.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ClientID  uuid.UUID `json:"client_id"`
	WorkerID  uuid.UUID `json:"worker_id"`
	Score     int       `json:"score"` // 1..5
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidScore reports whether a rating score is in the accepted range.
func ValidScore(score int) bool {
	return score >= 1 && score <= 5
}
