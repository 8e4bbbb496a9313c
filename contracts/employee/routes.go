package employee

import (
	"net/http"

	"carehub/contracts/common"
	"carehub/pkg/contract"
)

const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
)

var (
	List = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/employees",
		Query:      ListQuery,
		Headers:    common.AuthHeaders,
		Responses:  common.OffsetList(Schema),
		Pagination: contract.PaginationOffset,
	})
	Get = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/employees/:id",
		PathParams: common.IDParam(),
		Headers:    common.AuthHeaders,
		Responses:  common.Single(Schema, http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound),
	})
	Create = contract.MustDefine(contract.Spec{
		Method:    http.MethodPost,
		Path:      "/employees",
		Headers:   common.AuthHeaders,
		Body:      CreateSchema,
		Responses: common.Created(Schema, http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict),
	})
	Update = contract.MustDefine(contract.Spec{
		Method:     http.MethodPatch,
		Path:       "/employees/:id",
		PathParams: common.IDParam(),
		Headers:    common.AuthHeaders,
		Body:       UpdateSchema,
		Responses:  common.Single(Schema, http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound),
	})
)

// Router groups the employee operations.
func Router() contract.Router {
	return contract.NewRouter(Domain, map[string]*contract.Operation{
		OpList:   List,
		OpGet:    Get,
		OpCreate: Create,
		OpUpdate: Update,
	})
}
