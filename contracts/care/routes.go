package care

import (
	"net/http"

	"carehub/contracts/common"
	"carehub/pkg/contract"
)

const (
	OpListSessions   = "list_sessions"
	OpGetSession     = "get_session"
	OpCreateSession  = "create_session"
	OpListPrograms   = "list_programs"
	OpGetCarePlan    = "get_care_plan"
	OpCreateCarePlan = "create_care_plan"
)

var (
	ListSessions = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/sessions",
		Query:      SessionListQuery,
		Responses:  common.CursorList(SessionSchema),
		Pagination: contract.PaginationCursor,
		Summary:    "Activity feed of scheduled sessions",
	})
	GetSession = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/sessions/:id",
		PathParams: common.IDParam(),
		Responses:  common.Single(SessionWithProgramSchema, http.StatusBadRequest, http.StatusNotFound),
	})
	CreateSession = contract.MustDefine(contract.Spec{
		Method:    http.MethodPost,
		Path:      "/sessions",
		Body:      CreateSessionSchema,
		Responses: common.Created(SessionSchema, http.StatusBadRequest),
	})
	ListPrograms = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/programs",
		Query:      ProgramListQuery,
		Responses:  common.OffsetList(ProgramSchema),
		Pagination: contract.PaginationOffset,
	})
	GetCarePlan = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/care-plans/:id",
		PathParams: common.IDParam(),
		Responses:  common.Single(CarePlanSchema, http.StatusBadRequest, http.StatusNotFound),
	})
	CreateCarePlan = contract.MustDefine(contract.Spec{
		Method:    http.MethodPost,
		Path:      "/care-plans",
		Body:      CreateCarePlanSchema,
		Responses: common.Created(CarePlanSchema, http.StatusBadRequest),
	})
)

// Router groups the care operations.
func Router() contract.Router {
	return contract.NewRouter(Domain, map[string]*contract.Operation{
		OpListSessions:   ListSessions,
		OpGetSession:     GetSession,
		OpCreateSession:  CreateSession,
		OpListPrograms:   ListPrograms,
		OpGetCarePlan:    GetCarePlan,
		OpCreateCarePlan: CreateCarePlan,
	})
}
