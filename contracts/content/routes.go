package content

import (
	"net/http"

	"carehub/contracts/common"
	"carehub/pkg/contract"
	"carehub/pkg/schema"
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
		Path:       "/pages",
		Query:      PageListQuery,
		Responses:  common.CursorList(PageSchema),
		Pagination: contract.PaginationCursor,
		Summary:    "Published pages for the public site",
	})
	Get = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/pages/:slug",
		PathParams: map[string]schema.Schema{"slug": slug()},
		Responses:  common.Single(PageSchema, http.StatusBadRequest, http.StatusNotFound),
	})
	Create = contract.MustDefine(contract.Spec{
		Method:    http.MethodPost,
		Path:      "/pages",
		Headers:   common.AuthHeaders,
		Body:      CreatePageSchema,
		Responses: common.Created(PageSchema, http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict),
	})
	Update = contract.MustDefine(contract.Spec{
		Method:     http.MethodPatch,
		Path:       "/pages/:id",
		PathParams: common.IDParam(),
		Headers:    common.AuthHeaders,
		Body:       UpdatePageSchema,
		Responses:  common.Single(PageSchema, http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound),
	})
)

// Router groups the content operations.
func Router() contract.Router {
	return contract.NewRouter(Domain, map[string]*contract.Operation{
		OpList:   List,
		OpGet:    Get,
		OpCreate: Create,
		OpUpdate: Update,
	})
}
