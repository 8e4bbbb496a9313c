package care

import (
	"carehub/contracts/common"
	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/schema"
)

var ProgramSchema = common.Entity("Program",
	schema.Required("title", schema.String().Min(1).Max(120)),
	schema.Optional("description", schema.String().Max(2000)),
	schema.Required("category", schema.Enum("physical", "cognitive", "social", "creative")),
	schema.Required("capacity", schema.Int().Min(1).Max(500)),
	schema.Required("active", schema.Bool()).Default(true),
)

var SessionSchema = common.Entity("Session",
	schema.Required("program_id", schema.ID()),
	schema.Required("starts_at", schema.Timestamp()),
	schema.Required("ends_at", schema.Timestamp()),
	schema.Required("location", schema.String().Min(1).Max(120)),
	schema.Optional("facilitator_id", schema.ID()).Nullable(),
).Refine(func(v map[string]any) []dErrors.Issue {
	start, okStart := v["starts_at"].(domain.Timestamp)
	end, okEnd := v["ends_at"].(domain.Timestamp)
	if okStart && okEnd && !end.Time().After(start.Time()) {
		return []dErrors.Issue{{Path: "ends_at", Message: "must be after starts_at"}}
	}
	return nil
})

// SessionWithProgramSchema composes a session with its program. Both parts
// remain independently valid schemas.
var SessionWithProgramSchema = SessionSchema.
	Merge(schema.Shape(schema.Required("program", ProgramSchema))).
	Named("SessionWithProgram")

var InterventionSchema = schema.Shape(
	schema.Required("description", schema.String().Min(1).Max(500)),
	schema.Required("frequency", schema.Enum("daily", "weekly", "monthly", "as_needed")),
)

var CarePlanSchema = common.Entity("CarePlan",
	schema.Required("resident_id", schema.ID()),
	schema.Required("title", schema.String().Min(1).Max(200)),
	schema.Required("goals", schema.Array(schema.String().Min(1).Max(500)).Min(1).Max(20)),
	schema.Optional("interventions", schema.Array(InterventionSchema).Max(50)).Default([]any{}),
	schema.Required("review_date", schema.Date()),
	schema.Required("status", schema.Enum("draft", "active", "archived")).Default("draft"),
)

var (
	CreateSessionSchema  = SessionSchema.CreateInput()
	CreateCarePlanSchema = CarePlanSchema.CreateInput()
)

var SessionListQuery = envelope.CursorQuerySchema().
	Extend(schema.Optional("program_id", schema.ID())).
	Named("ListSessionsQuery")

var ProgramListQuery = envelope.OffsetQuerySchema().Named("ListProgramsQuery")
