package accounting

import (
	"carehub/contracts/common"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/envelope"
	"carehub/pkg/schema"
)

var invoiceStatuses = schema.Enum(string(InvoiceDraft), string(InvoiceIssued), string(InvoicePaid), string(InvoiceVoid))

var AccountSchema = common.Entity("Account",
	schema.Required("code", schema.String().Pattern(`^\d{4}$`)),
	schema.Required("name", schema.String().Min(1).Max(120)),
	schema.Required("type", schema.Enum(
		string(AccountAsset), string(AccountLiability), string(AccountEquity),
		string(AccountRevenue), string(AccountExpense),
	)),
	schema.Optional("resident_id", schema.ID()).Nullable(),
	schema.Required("balance_cents", schema.Int()).ServerOwned(),
)

// Line item bounds keep every invoice total, at the 50 item cap, well
// inside int64 cents.
const (
	MaxLineQuantity   = 100_000
	MaxUnitPriceCents = 10_000_000_000
)

var LineItemSchema = schema.Shape(
	schema.Required("description", schema.String().Min(1).Max(200)),
	schema.Required("quantity", schema.Int().Min(1).Max(MaxLineQuantity)),
	schema.Required("unit_price_cents", schema.Int().Min(0).Max(MaxUnitPriceCents)),
)

var InvoiceSchema = common.Entity("Invoice",
	schema.Required("number", schema.String().Pattern(`^INV-\d{6,}$`)).ServerOwned(),
	schema.Required("resident_id", schema.ID()),
	schema.Required("issue_date", schema.Date()),
	schema.Required("due_date", schema.Date()),
	schema.Required("line_items", schema.Array(LineItemSchema).Min(1).Max(50)),
	schema.Required("total_cents", schema.Int().Min(0)).ServerOwned(),
	schema.Required("status", invoiceStatuses).Default(string(InvoiceDraft)),
	schema.Optional("notes", schema.String().Max(1000)).Nullable(),
).Refine(func(v map[string]any) []dErrors.Issue {
	issued, _ := v["issue_date"].(string)
	due, _ := v["due_date"].(string)
	if issued != "" && due != "" && due < issued {
		return []dErrors.Issue{{Path: "due_date", Message: "must not be before issue_date"}}
	}
	return nil
})

var LedgerEntrySchema = common.Entity("LedgerEntry",
	schema.Required("account_id", schema.ID()),
	schema.Optional("invoice_id", schema.ID()).Nullable(),
	schema.Required("posted_at", schema.Timestamp()),
	schema.Required("amount_cents", schema.Int().Min(1)),
	schema.Required("direction", schema.Enum(string(Debit), string(Credit))),
	schema.Optional("memo", schema.String().Max(200)),
)

var (
	CreateInvoiceSchema = InvoiceSchema.CreateInput()
	UpdateInvoiceSchema = InvoiceSchema.UpdateInput()
)

// InvoiceListQuery pages invoices with optional filters.
var InvoiceListQuery = envelope.OffsetQuerySchema().
	Extend(
		schema.Optional("status", invoiceStatuses),
		schema.Optional("resident_id", schema.ID()),
	).
	Named("ListInvoicesQuery")

var LedgerListQuery = envelope.OffsetQuerySchema().Named("ListLedgerEntriesQuery")
