// Package contracts assembles the per-domain routers into the contract tree
// shared by the API server, the typed client and contractctl.
package contracts

import (
	"sort"
	"strings"

	"carehub/contracts/accounting"
	"carehub/contracts/care"
	"carehub/contracts/content"
	"carehub/contracts/employee"
	"carehub/contracts/resident"
	"carehub/pkg/contract"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/schema"
)

// Routers returns every domain router.
func Routers() []contract.Router {
	return []contract.Router{
		resident.Router(),
		accounting.Router(),
		employee.Router(),
		care.Router(),
		content.Router(),
	}
}

// New merges every domain router. It is called once at startup; the result
// is immutable and passed to its consumers explicitly.
func New() (*contract.Tree, error) {
	return contract.MergeRouters(Routers()...)
}

// EntitiesByDomain lists the entity schemas each domain owns.
func EntitiesByDomain() map[string][]*schema.Object {
	return map[string][]*schema.Object{
		resident.Domain:   {resident.Schema},
		accounting.Domain: {accounting.AccountSchema, accounting.InvoiceSchema, accounting.LedgerEntrySchema},
		employee.Domain:   {employee.Schema},
		care.Domain:       {care.ProgramSchema, care.SessionSchema, care.SessionWithProgramSchema, care.CarePlanSchema},
		content.Domain:    {content.PageSchema},
	}
}

// Entities lists every entity schema in the registry, ordered by domain.
func Entities() []*schema.Object {
	byDomain := EntitiesByDomain()
	domains := make([]string, 0, len(byDomain))
	for d := range byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	var out []*schema.Object
	for _, d := range domains {
		out = append(out, byDomain[d]...)
	}
	return out
}

// LookupEntity resolves "domain.Entity", e.g. "resident.Resident".
func LookupEntity(ref string) (*schema.Object, error) {
	domain, name, ok := strings.Cut(ref, ".")
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "entity reference %q must be domain.Entity", ref)
	}
	for _, e := range EntitiesByDomain()[domain] {
		if e.Name() == name {
			return e, nil
		}
	}
	return nil, dErrors.Newf(dErrors.CodeNotFound, "unknown entity %q", ref)
}
