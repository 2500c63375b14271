package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a read-only collaborator record. The claim engines never mutate
// users.
type User struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	Role              string           `json:"role"` // LECTURER, COORDINATOR, MANAGER, HR
	DefaultHourlyRate *decimal.Decimal `json:"default_hourly_rate,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// Role constants
const (
	RoleLecturer    = "LECTURER"
	RoleCoordinator = "COORDINATOR"
	RoleManager     = "MANAGER"
	RoleHR          = "HR"
)
