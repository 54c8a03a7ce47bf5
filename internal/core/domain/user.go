package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies what a principal is allowed to do.
type Role string

const (
	RoleClient Role = "client"
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// User represents a registered principal. The point balance lives on the
// user row and is mutated only through the wallet repository primitives.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"` // Never expose
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	Balance      int64     `json:"balance"` // Points in minor units, never negative
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WorkerProfile carries a worker's public stats. RatingAverage, RatingCount
// and CompletedJobs are recomputed inside the rating submission transaction.
type WorkerProfile struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	HourlyRate    int64     `json:"hourly_rate"`
	ExperienceYrs int       `json:"experience_years"`
	Available     bool      `json:"available"`
	RatingAverage float64   `json:"rating_average"`
	RatingCount   int64     `json:"rating_count"`
	CompletedJobs int64     `json:"completed_jobs"`
	Bio           string    `json:"bio,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Category is a read-only service category consumed at order creation.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
}
