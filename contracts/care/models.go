package care

import (
	"carehub/contracts/common"
	"carehub/pkg/domain"
)

// Package care hosts the activity programs, their scheduled sessions and
// resident care plans. How a plan is approved is out of scope; only its
// shape is declared.

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v1.0.0"

// Domain is the router name in the merged contract tree.
const Domain = "care"

type Program struct {
	common.BaseEntity
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Capacity    int64  `json:"capacity"`
	Active      bool   `json:"active"`
}

type Session struct {
	common.BaseEntity
	ProgramID     domain.ID        `json:"program_id"`
	StartsAt      domain.Timestamp `json:"starts_at"`
	EndsAt        domain.Timestamp `json:"ends_at"`
	Location      string           `json:"location"`
	FacilitatorID *domain.ID       `json:"facilitator_id"`
}

// SessionWithProgram is a session with its program embedded.
type SessionWithProgram struct {
	Session
	Program Program `json:"program"`
}

type Intervention struct {
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

type CarePlan struct {
	common.BaseEntity
	ResidentID    domain.ID      `json:"resident_id"`
	Title         string         `json:"title"`
	Goals         []string       `json:"goals"`
	Interventions []Intervention `json:"interventions"`
	ReviewDate    string         `json:"review_date"`
	Status        string         `json:"status"`
}
