package content

import (
	"carehub/contracts/common"
	"carehub/pkg/domain"
)

// Package content hosts the public marketing pages.

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v1.0.0"

// Domain is the router name in the merged contract tree.
const Domain = "content"

type Page struct {
	common.BaseEntity
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Published   bool              `json:"published"`
	PublishedAt *domain.Timestamp `json:"published_at"`
}
