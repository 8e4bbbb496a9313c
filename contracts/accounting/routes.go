package accounting

import (
	"net/http"

	"carehub/contracts/common"
	"carehub/pkg/contract"
)

const (
	OpListInvoices      = "list_invoices"
	OpGetInvoice        = "get_invoice"
	OpCreateInvoice     = "create_invoice"
	OpUpdateInvoice     = "update_invoice"
	OpGetAccount        = "get_account"
	OpListLedgerEntries = "list_ledger_entries"
)

var (
	ListInvoices = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/invoices",
		Query:      InvoiceListQuery,
		Responses:  common.OffsetList(InvoiceSchema),
		Pagination: contract.PaginationOffset,
		Summary:    "List invoices, newest first",
	})
	GetInvoice = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/invoices/:id",
		PathParams: common.IDParam(),
		Responses:  common.Single(InvoiceSchema, http.StatusBadRequest, http.StatusNotFound),
	})
	CreateInvoice = contract.MustDefine(contract.Spec{
		Method:    http.MethodPost,
		Path:      "/invoices",
		Body:      CreateInvoiceSchema,
		Responses: common.Created(InvoiceSchema, http.StatusBadRequest),
		Summary:   "Draft an invoice; number and total are assigned by the server",
	})
	UpdateInvoice = contract.MustDefine(contract.Spec{
		Method:     http.MethodPatch,
		Path:       "/invoices/:id",
		PathParams: common.IDParam(),
		Body:       UpdateInvoiceSchema,
		Responses:  common.Single(InvoiceSchema, http.StatusBadRequest, http.StatusNotFound, http.StatusConflict),
	})
	GetAccount = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/accounts/:id",
		PathParams: common.IDParam(),
		Responses:  common.Single(AccountSchema, http.StatusBadRequest, http.StatusNotFound),
	})
	ListLedgerEntries = contract.MustDefine(contract.Spec{
		Method:     http.MethodGet,
		Path:       "/accounts/:id/ledger-entries",
		PathParams: common.IDParam(),
		Query:      LedgerListQuery,
		Responses:  common.OffsetList(LedgerEntrySchema),
		Pagination: contract.PaginationOffset,
		Summary:    "Monthly ledger view for one account",
	})
)

// Router groups the accounting operations.
func Router() contract.Router {
	return contract.NewRouter(Domain, map[string]*contract.Operation{
		OpListInvoices:      ListInvoices,
		OpGetInvoice:        GetInvoice,
		OpCreateInvoice:     CreateInvoice,
		OpUpdateInvoice:     UpdateInvoice,
		OpGetAccount:        GetAccount,
		OpListLedgerEntries: ListLedgerEntries,
	})
}
