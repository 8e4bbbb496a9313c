package employee

import (
	"carehub/contracts/common"
	"carehub/pkg/envelope"
	"carehub/pkg/schema"
)

var Schema = common.Entity("Employee",
	schema.Required("first_name", schema.String().Min(1).Max(100)),
	schema.Required("last_name", schema.String().Min(1).Max(100)),
	schema.Required("email", schema.String().Tag("email")),
	schema.Optional("phone", schema.String().Tag("e164")),
	schema.Required("role", schema.Enum(
		string(RoleNurse), string(RoleCaregiver), string(RoleAdministrator),
		string(RoleTherapist), string(RoleKitchen), string(RoleMaintenance),
	)),
	schema.Required("department", schema.String().Tag("notblank").Max(80)),
	schema.Required("hire_date", schema.Date()),
	schema.Required("hourly_rate_cents", schema.Int().Min(0)),
	schema.Required("active", schema.Bool()).Default(true),
)

var (
	CreateSchema = Schema.CreateInput()
	UpdateSchema = Schema.UpdateInput()
)

var ListQuery = envelope.OffsetQuerySchema().
	Extend(schema.Optional("active", schema.Bool().Coerce())).
	Named("ListEmployeesQuery")
