package employee

import "carehub/contracts/common"

// Package employee hosts the staff HR contract. Every route expects the
// bearer header shape from common.AuthHeaders.

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v1.0.0"

// Domain is the router name in the merged contract tree.
const Domain = "employee"

type Role string

const (
	RoleNurse         Role = "nurse"
	RoleCaregiver     Role = "caregiver"
	RoleAdministrator Role = "administrator"
	RoleTherapist     Role = "therapist"
	RoleKitchen       Role = "kitchen"
	RoleMaintenance   Role = "maintenance"
)

type Employee struct {
	common.BaseEntity
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone,omitempty"`
	Role            Role    `json:"role"`
	Department      string  `json:"department"`
	HireDate        string  `json:"hire_date"`
	HourlyRateCents int64   `json:"hourly_rate_cents"`
	Active          bool    `json:"active"`
}
