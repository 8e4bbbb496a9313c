package testutil

import (
	"time"

	"carehub/contracts/common"
	"carehub/contracts/resident"
	"carehub/pkg/domain"
)

// FixedNow is the clock used by fixtures.
var FixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

// ResidentBuilder provides a fluent interface for building test residents.
// The default resident is valid against resident.Schema.
type ResidentBuilder struct {
	r *resident.Resident
}

// NewResidentBuilder creates a builder with sensible defaults.
func NewResidentBuilder() *ResidentBuilder {
	stamp := domain.TimestampFromTime(FixedNow)
	return &ResidentBuilder{r: &resident.Resident{
		BaseEntity: common.BaseEntity{
			ID:        domain.MustParseID("9007199254740993"),
			CreatedAt: stamp,
			UpdatedAt: stamp,
		},
		FirstName:     "Ada",
		LastName:      "Lovelace",
		DateOfBirth:   "1935-12-10",
		Gender:        resident.GenderFemale,
		AdmissionDate: "2024-11-02",
		Status:        resident.StatusActive,
		CareLevel:     resident.CareLevelAssisted,
		EmergencyContacts: []resident.EmergencyContact{
			{Name: "Byron King", Relationship: "son", Phone: "+442071234567"},
		},
	}}
}

func (b *ResidentBuilder) WithID(id string) *ResidentBuilder {
	b.r.ID = domain.MustParseID(id)
	return b
}

func (b *ResidentBuilder) WithName(first, last string) *ResidentBuilder {
	b.r.FirstName = first
	b.r.LastName = last
	return b
}

func (b *ResidentBuilder) WithRoom(room string) *ResidentBuilder {
	b.r.RoomNumber = &room
	return b
}

func (b *ResidentBuilder) WithStatus(status resident.Status) *ResidentBuilder {
	b.r.Status = status
	return b
}

func (b *ResidentBuilder) Discharged(on string) *ResidentBuilder {
	b.r.Status = resident.StatusDischarged
	b.r.DischargeDate = &on
	return b
}

func (b *ResidentBuilder) WithMetadata(m map[string]any) *ResidentBuilder {
	b.r.Metadata = domain.JSONPayload(m)
	return b
}

// Build returns the resident. Each call returns the same pointer.
func (b *ResidentBuilder) Build() *resident.Resident {
	return b.r
}

// CreateBody is the JSON-shaped body of a create request for the default resident.
func CreateBody() map[string]any {
	return map[string]any{
		"first_name":     "Ada",
		"last_name":      "Lovelace",
		"date_of_birth":  "1935-12-10",
		"gender":         "female",
		"admission_date": "2024-11-02",
		"care_level":     "assisted",
		"room_number":    "12B",
	}
}
