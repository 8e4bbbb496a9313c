package resident

import (
	"carehub/contracts/common"
	"carehub/pkg/domain"
)

// Package resident hosts the resident intake contract: the entity schema,
// its create/update derivations and the resident routes.

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v1.0.0"

// Domain is the router name in the merged contract tree.
const Domain = "resident"

type Status string

const (
	StatusActive     Status = "active"
	StatusOnLeave    Status = "on_leave"
	StatusDischarged Status = "discharged"
)

type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderOther       Gender = "other"
	GenderUndisclosed Gender = "undisclosed"
)

type CareLevel string

const (
	CareLevelIndependent    CareLevel = "independent"
	CareLevelAssisted       CareLevel = "assisted"
	CareLevelMemoryCare     CareLevel = "memory_care"
	CareLevelSkilledNursing CareLevel = "skilled_nursing"
)

// EmergencyContact is a person to call on behalf of a resident.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
}

// Resident is the wire form of a resident record. Dates are YYYY-MM-DD.
type Resident struct {
	common.BaseEntity
	FirstName         string             `json:"first_name"`
	LastName          string             `json:"last_name"`
	PreferredName     *string            `json:"preferred_name,omitempty"`
	DateOfBirth       string             `json:"date_of_birth"`
	Gender            Gender             `json:"gender"`
	RoomNumber        *string            `json:"room_number,omitempty"`
	AdmissionDate     string             `json:"admission_date"`
	DischargeDate     *string            `json:"discharge_date"`
	Status            Status             `json:"status"`
	CareLevel         CareLevel          `json:"care_level"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts,omitempty"`
	DietaryNotes      *string            `json:"dietary_notes"`
	Metadata          domain.JSONPayload `json:"metadata,omitempty"`
}

// DischargeInput is the body of the discharge operation.
type DischargeInput struct {
	DischargeDate string `json:"discharge_date"`
	Reason        string `json:"reason,omitempty"`
}
