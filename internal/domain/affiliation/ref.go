// Package affiliation maintains the denormalized company references embedded
// in affiliate documents (customers, indicadores, parceiros). A reference is a
// cached copy of a company's identity; the array it lives in carries the
// affiliate's full link history, with at most one entry active at a time.
package affiliation

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompanyRef is a denormalized copy of a company embedded in an affiliate
// document. IsActive marks the affiliate's current company; IsCompanyActive is
// the cached operational status of the company itself. The two are unrelated.
// The id is elided when zero so a reference normalized from a legacy
// name-only shape keeps its id-less form if it is ever written back.
type CompanyRef struct {
	ID              primitive.ObjectID `bson:"id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	IsCompanyActive bool               `bson:"isCompanyActive" json:"isCompanyActive"`
	LicenseType     string             `bson:"licenseType,omitempty" json:"licenseType,omitempty"`
}

// RefView is the API-boundary representation of a CompanyRef: the id is a hex
// string instead of a native ObjectID. Views are never written back to the
// store; persisting one would silently change the id type of the document.
type RefView struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	IsActive        bool   `json:"isActive"`
	IsCompanyActive bool   `json:"isCompanyActive"`
	LicenseType     string `json:"licenseType,omitempty"`
}

// View converts a single reference to its response representation.
func (r CompanyRef) View() RefView {
	v := RefView{
		Name:            r.Name,
		IsActive:        r.IsActive,
		IsCompanyActive: r.IsCompanyActive,
		LicenseType:     r.LicenseType,
	}
	if !r.ID.IsZero() {
		v.ID = r.ID.Hex()
	}
	return v
}

// ViewsFrom converts a reference array to its response representation.
// It always returns a non-nil slice so the field serializes as [] rather
// than null.
func ViewsFrom(refs []CompanyRef) []RefView {
	views := make([]RefView, 0, len(refs))
	for _, r := range refs {
		views = append(views, r.View())
	}
	return views
}

// ActiveRef returns the reference currently marked active, if any.
func ActiveRef(refs []CompanyRef) (CompanyRef, bool) {
	for _, r := range refs {
		if r.IsActive {
			return r, true
		}
	}
	return CompanyRef{}, false
}

// ActiveCount returns the number of references marked active. Anything other
// than 0 or 1 is a violation of the single-active invariant.
func ActiveCount(refs []CompanyRef) int {
	n := 0
	for _, r := range refs {
		if r.IsActive {
			n++
		}
	}
	return n
}
