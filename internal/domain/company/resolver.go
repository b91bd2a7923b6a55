package company

import (
	"context"
	"errors"
	"strings"

	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/domain/shared"
)

// Resolver turns human-entered company names into embeddable references.
// Callers do not distinguish "name not found" from "company not eligible";
// both surface as shared.ErrCompanyNotEligible. That conflation is accepted
// behavior, not something to fix here.
type Resolver struct {
	repo Repository
}

// NewResolver creates a resolver backed by the given repository
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve looks up a company by exact (trimmed) name. When validateStatus is
// set the company must also be operationally active. Read-only.
func (r *Resolver) Resolve(ctx context.Context, name string, validateStatus bool) (affiliation.CompanyRef, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return affiliation.CompanyRef{}, shared.ErrCompanyNotEligible
	}

	c, err := r.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return affiliation.CompanyRef{}, shared.ErrCompanyNotEligible
		}
		return affiliation.CompanyRef{}, err
	}

	if validateStatus && !c.IsOperational() {
		return affiliation.CompanyRef{}, shared.ErrCompanyNotEligible
	}

	return refFor(c), nil
}

// ResolveBatch resolves a set of names with a single deduplicated lookup.
// This is a performance optimization for bulk create paths only: per-name
// outcomes are identical to calling Resolve for each. Names that do not
// resolve (absent or ineligible) are missing from the returned map; the
// caller decides the skip policy.
func (r *Resolver) ResolveBatch(ctx context.Context, names []string, validateStatus bool) (map[string]affiliation.CompanyRef, error) {
	distinct := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		distinct = append(distinct, name)
	}

	resolved := make(map[string]affiliation.CompanyRef, len(distinct))
	if len(distinct) == 0 {
		return resolved, nil
	}

	companies, err := r.repo.FindByNames(ctx, distinct)
	if err != nil {
		return nil, err
	}

	for i := range companies {
		c := &companies[i]
		if validateStatus && !c.IsOperational() {
			continue
		}
		resolved[c.Name] = refFor(c)
	}
	return resolved, nil
}

func refFor(c *Company) affiliation.CompanyRef {
	return affiliation.CompanyRef{
		ID:              c.ID,
		Name:            c.Name,
		IsCompanyActive: c.IsOperational(),
		LicenseType:     string(c.LicenseType),
	}
}
