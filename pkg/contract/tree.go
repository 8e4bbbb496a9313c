package contract

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	dErrors "carehub/pkg/domain-errors"
)

// Router groups the operations of one domain by name.
type Router struct {
	Domain     string
	Operations map[string]*Operation
}

// NewRouter builds a domain router. The map is copied.
func NewRouter(domain string, ops map[string]*Operation) Router {
	return Router{Domain: domain, Operations: copyMap(ops)}
}

// Entry is one operation addressed in the tree.
type Entry struct {
	Domain    string
	Name      string
	Operation *Operation
}

// ID is "domain.name".
func (e Entry) ID() string { return e.Domain + "." + e.Name }

// Tree is the merged contract. It is never mutated after MergeRouters
// returns, so it can be shared between goroutines without locking.
type Tree struct {
	domains map[string]map[string]*Operation
	entries []Entry
}

// MergeRouters combines per-domain routers into one tree. Two operations
// claiming the same method and path shape (parameter names ignored) fail
// with DUPLICATE_ROUTE, as does a repeated domain name.
func MergeRouters(routers ...Router) (*Tree, error) {
	t := &Tree{domains: make(map[string]map[string]*Operation, len(routers))}
	owners := make(map[string]Entry)

	for _, r := range routers {
		if r.Domain == "" || strings.Contains(r.Domain, ".") {
			return nil, dErrors.Newf(dErrors.CodeInvalidDescriptor, "invalid domain name %q", r.Domain)
		}
		if _, dup := t.domains[r.Domain]; dup {
			return nil, dErrors.Newf(dErrors.CodeDuplicateRoute, "domain %q is declared twice", r.Domain)
		}
		ops := make(map[string]*Operation, len(r.Operations))
		for _, name := range sortedKeys(r.Operations) {
			op := r.Operations[name]
			if op == nil {
				return nil, dErrors.Newf(dErrors.CodeInvalidDescriptor, "%s.%s has no descriptor", r.Domain, name)
			}
			e := Entry{Domain: r.Domain, Name: name, Operation: op}
			shape := op.shape()
			if prev, taken := owners[shape]; taken {
				return nil, dErrors.Newf(dErrors.CodeDuplicateRoute,
					"%s is declared by both %s and %s", op.Key(), prev.ID(), e.ID())
			}
			owners[shape] = e
			ops[name] = op
			t.entries = append(t.entries, e)
		}
		t.domains[r.Domain] = ops
	}

	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].ID() < t.entries[j].ID()
	})
	return t, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Domains lists the domain names in order.
func (t *Tree) Domains() []string {
	return sortedKeys(t.domains)
}

// Len is the number of operations.
func (t *Tree) Len() int { return len(t.entries) }

// Entries lists every operation ordered by domain then name.
func (t *Tree) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Lookup finds an operation by domain and name.
func (t *Tree) Lookup(domain, name string) (*Operation, bool) {
	op, ok := t.domains[domain][name]
	return op, ok
}

// LookupID finds an operation by "domain.name".
func (t *Tree) LookupID(id string) (*Operation, error) {
	domain, name, ok := strings.Cut(id, ".")
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "operation id %q must be domain.name", id)
	}
	op, found := t.Lookup(domain, name)
	if !found {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "unknown operation %q", id)
	}
	return op, nil
}

// Match resolves a concrete request to an operation. Literal segments win
// over parameters when more than one route fits.
func (t *Tree) Match(method, path string) (Entry, map[string]string, bool) {
	var (
		best       Entry
		bestParams map[string]string
		found      bool
	)
	for _, e := range t.entries {
		params, ok := e.Operation.match(method, path)
		if !ok {
			continue
		}
		if !found || e.Operation.literalCount() > best.Operation.literalCount() {
			best, bestParams, found = e, params, true
		}
	}
	return best, bestParams, found
}

func (t *Tree) String() string {
	return fmt.Sprintf("contract.Tree(%d domains, %d operations)", len(t.domains), len(t.entries))
}

// Holder publishes the current tree for runtime reloads. A reload builds a
// complete new tree and swaps the pointer; readers never see a partial one.
type Holder struct {
	current atomic.Pointer[Tree]
}

// NewHolder returns a holder publishing t.
func NewHolder(t *Tree) *Holder {
	h := &Holder{}
	h.current.Store(t)
	return h
}

// Load returns the current tree.
func (h *Holder) Load() *Tree { return h.current.Load() }

// Swap publishes next and returns the previous tree.
func (h *Holder) Swap(next *Tree) *Tree { return h.current.Swap(next) }
