package resident

import (
	"net/http"

	"carehub/contracts/common"
	"carehub/pkg/contract"
)

// Operation names within the resident router.
const (
	OpList      = "list"
	OpGet       = "get"
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDischarge = "discharge"
	OpDelete    = "delete"
)

var (
	List = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/residents",
		Query:      ListQuery,
		Responses:  common.CursorList(Schema),
		Pagination: contract.PaginationCursor,
		Summary:    "List residents ordered by id",
	})
	Get = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/residents/:id",
		PathParams: common.IDParam(),
		Responses:  common.Single(Schema, http.StatusBadRequest, http.StatusNotFound),
		Summary:    "Fetch one resident",
	})
	Create = contract.MustDefine(contract.Spec{
		Method:    http.MethodPost,
		Path:      "/residents",
		Body:      CreateSchema,
		Responses: common.Created(Schema, http.StatusBadRequest, http.StatusConflict),
		Summary:   "Admit a resident",
	})
	Update = contract.MustDefine(contract.Spec{
		Method:     http.MethodPatch,
		Path:       "/residents/:id",
		PathParams: common.IDParam(),
		Body:       UpdateSchema,
		Responses:  common.Single(Schema, http.StatusBadRequest, http.StatusNotFound),
		Summary:    "Partially update a resident; omitted fields are left untouched",
	})
	Discharge = contract.MustDefine(contract.Spec{
		Method:     http.MethodPost,
		Path:       "/residents/:id/discharge",
		PathParams: common.IDParam(),
		Body:       DischargeSchema,
		Responses:  common.Single(Schema, http.StatusBadRequest, http.StatusNotFound, http.StatusConflict),
		Summary:    "Record a discharge",
	})
	Delete = contract.MustDefine(contract.Spec{
		Method:     http.MethodDelete,
		Path:       "/residents/:id",
		PathParams: common.IDParam(),
		Responses:  common.NoContent(http.StatusBadRequest, http.StatusNotFound),
		Summary:    "Delete a resident record",
	})
)

// Router groups the resident operations.
func Router() contract.Router {
	return contract.NewRouter(Domain, map[string]*contract.Operation{
		OpList:      List,
		OpGet:       Get,
		OpCreate:    Create,
		OpUpdate:    Update,
		OpDischarge: Discharge,
		OpDelete:    Delete,
	})
}
