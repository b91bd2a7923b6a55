package affiliation

import (
	"github.com/licsync/backend/internal/domain/shared"
)

// Link attaches resolved as the affiliate's current company. Existing
// references are preserved as history: if the company is already present but
// inactive its entry is reactivated in place instead of duplicated; a fresh
// company is appended. Every other reference is deactivated.
//
// Returns ErrAlreadyLinked when the company is already the active reference.
// Postcondition: exactly one reference is active and it matches resolved.
func Link(refs []CompanyRef, resolved CompanyRef) ([]CompanyRef, error) {
	for _, r := range refs {
		if !r.ID.IsZero() && r.ID == resolved.ID && r.IsActive {
			return nil, shared.ErrAlreadyLinked
		}
	}

	out := make([]CompanyRef, len(refs))
	copy(out, refs)

	// Corrupt arrays can hold the same company twice; only the first entry
	// wins the active slot, the rest are forced inactive like any other.
	reactivated := false
	for i := range out {
		if !reactivated && !out[i].ID.IsZero() && out[i].ID == resolved.ID {
			// Reuse the historical entry, refreshing the cached copies.
			out[i].Name = resolved.Name
			out[i].IsCompanyActive = resolved.IsCompanyActive
			out[i].LicenseType = resolved.LicenseType
			out[i].IsActive = true
			reactivated = true
			continue
		}
		out[i].IsActive = false
	}

	if !reactivated {
		resolved.IsActive = true
		out = append(out, resolved)
	}
	return out, nil
}

// Unlink removes the affiliate's current company reference. When no entry is
// marked active the first reference is removed instead: some documents
// predate the isActive field entirely, and for those the head of the array is
// the best available notion of "current". This fallback can discard history
// and is kept as observed behavior.
//
// Returns ErrNothingToUnlink when the array is empty.
func Unlink(refs []CompanyRef) ([]CompanyRef, error) {
	if len(refs) == 0 {
		return nil, shared.ErrNothingToUnlink
	}

	idx := 0
	for i, r := range refs {
		if r.IsActive {
			idx = i
			break
		}
	}

	out := make([]CompanyRef, 0, len(refs)-1)
	out = append(out, refs[:idx]...)
	out = append(out, refs[idx+1:]...)
	return out, nil
}

// ApplyCallerOrder enforces the single-active invariant on a caller-supplied
// reference list (create and update-with-company paths): position 0 always
// wins the active slot, every other entry is forced inactive regardless of
// what the caller marked.
func ApplyCallerOrder(refs []CompanyRef) []CompanyRef {
	out := make([]CompanyRef, len(refs))
	copy(out, refs)
	for i := range out {
		out[i].IsActive = i == 0
	}
	return out
}
