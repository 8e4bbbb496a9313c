package resident

import (
	"carehub/contracts/common"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/schema"
)

var statuses = schema.Enum(string(StatusActive), string(StatusOnLeave), string(StatusDischarged))

var EmergencyContactSchema = schema.Shape(
	schema.Required("name", schema.String().Min(1).Max(120)),
	schema.Required("relationship", schema.String().Min(1).Max(60)),
	schema.Required("phone", schema.String().Tag("e164")),
	schema.Optional("email", schema.String().Tag("email")),
)

// Schema is the Resident entity.
var Schema = common.Entity("Resident",
	schema.Required("first_name", schema.String().Min(1).Max(100)),
	schema.Required("last_name", schema.String().Min(1).Max(100)),
	schema.Optional("preferred_name", schema.String().Min(1).Max(100)),
	schema.Required("date_of_birth", schema.Date()),
	schema.Required("gender", schema.Enum(
		string(GenderFemale), string(GenderMale), string(GenderOther), string(GenderUndisclosed),
	)),
	schema.Optional("room_number", schema.String().Min(1).Max(10)),
	schema.Required("admission_date", schema.Date()),
	schema.Optional("discharge_date", schema.Date()).Nullable().ServerOwned(),
	schema.Required("status", statuses).Default(string(StatusActive)),
	schema.Required("care_level", schema.Enum(
		string(CareLevelIndependent), string(CareLevelAssisted),
		string(CareLevelMemoryCare), string(CareLevelSkilledNursing),
	)),
	schema.Optional("emergency_contacts", schema.Array(EmergencyContactSchema).Max(5)).Default([]any{}),
	schema.Optional("dietary_notes", schema.String().Max(2000)).Nullable(),
	schema.Optional("metadata", schema.JSON()),
).Refine(func(v map[string]any) []dErrors.Issue {
	admitted, _ := v["admission_date"].(string)
	discharged, _ := v["discharge_date"].(string)
	if admitted != "" && discharged != "" && discharged < admitted {
		return []dErrors.Issue{{Path: "discharge_date", Message: "must not be before admission_date"}}
	}
	return nil
})

var (
	// CreateSchema is the body of POST /residents.
	CreateSchema = Schema.CreateInput()
	// UpdateSchema is the body of PATCH /residents/:id.
	UpdateSchema = Schema.UpdateInput()
)

var DischargeSchema = schema.DefineEntity("DischargeResident",
	schema.Required("discharge_date", schema.Date()),
	schema.Optional("reason", schema.String().Max(500)),
)

// ListQuery filters the resident feed.
var ListQuery = envelope.CursorQuerySchema().
	Extend(schema.Optional("status", statuses)).
	Named("ListResidentsQuery")
