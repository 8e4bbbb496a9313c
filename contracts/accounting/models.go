package accounting

import (
	"fmt"
	"math"

	"carehub/contracts/common"
	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
)

// Package accounting hosts the ledger contract: accounts, invoices billed
// to residents and the ledger entries posted against accounts. Posting rules
// live with the accounting service, not here.

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v1.0.0"

// Domain is the router name in the merged contract tree.
const Domain = "accounting"

type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceIssued InvoiceStatus = "issued"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoid   InvoiceStatus = "void"
)

type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

type Account struct {
	common.BaseEntity
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Type         AccountType `json:"type"`
	ResidentID   *domain.ID  `json:"resident_id"`
	BalanceCents int64       `json:"balance_cents"`
}

type LineItem struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Invoice amounts are integer cents.
type Invoice struct {
	common.BaseEntity
	Number     string        `json:"number"`
	ResidentID domain.ID     `json:"resident_id"`
	IssueDate  string        `json:"issue_date"`
	DueDate    string        `json:"due_date"`
	LineItems  []LineItem    `json:"line_items"`
	TotalCents int64         `json:"total_cents"`
	Status     InvoiceStatus `json:"status"`
	Notes      *string       `json:"notes"`
}

type LedgerEntry struct {
	common.BaseEntity
	AccountID   domain.ID        `json:"account_id"`
	InvoiceID   *domain.ID       `json:"invoice_id"`
	PostedAt    domain.Timestamp `json:"posted_at"`
	AmountCents int64            `json:"amount_cents"`
	Direction   Direction        `json:"direction"`
	Memo        string           `json:"memo,omitempty"`
}

// Total is the sum of quantity times unit price. A line or running sum that
// does not fit in int64 fails with a VALIDATION_ERROR on that line.
func Total(items []LineItem) (int64, error) {
	var total int64
	for i, it := range items {
		line, ok := mulCents(it.Quantity, it.UnitPriceCents)
		if !ok || total > math.MaxInt64-line {
			return 0, dErrors.NewValidation([]dErrors.Issue{{
				Path:    fmt.Sprintf("line_items.%d", i),
				Message: "amount exceeds the representable total",
			}})
		}
		total += line
	}
	return total, nil
}

// mulCents multiplies non-negative amounts, reporting overflow.
func mulCents(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}
