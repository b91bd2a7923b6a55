package mongo

import (
	"github.com/licsync/backend/internal/domain/affiliation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The decision functions below map one scanned document (its normalized
// references plus the stored shape) to the patch a cascade applies, or nil to
// leave the document untouched. They are pure: all store interaction stays in
// scanAndPatch.
type referenceDecision func(refs []affiliation.CompanyRef, isArray bool) *referenceUpdate

// renameDecision rewrites the cached company name on every embedded
// reference, active or historical. Both shapes always patch.
func renameDecision(companyID primitive.ObjectID, newName string) referenceDecision {
	return func(refs []affiliation.CompanyRef, isArray bool) *referenceUpdate {
		if isArray {
			return &referenceUpdate{
				update: bson.M{"$set": bson.M{"company.$[el].name": newName}},
				opts:   []*options.UpdateOptions{matchElement(companyID, nil)},
			}
		}
		return &referenceUpdate{
			update: bson.M{"$set": bson.M{"company.name": newName}},
		}
	}
}

// licenseTypeDecision updates the cached license type only where this company
// is the active reference, mirroring it onto the affiliate's own license_type.
// Legacy single-object documents are treated as active: the embedded object is
// the affiliate's current company.
func licenseTypeDecision(companyID primitive.ObjectID, licenseType string) referenceDecision {
	return func(refs []affiliation.CompanyRef, isArray bool) *referenceUpdate {
		if isArray {
			active, ok := affiliation.ActiveRef(refs)
			if !ok || active.ID != companyID {
				return nil
			}
			return &referenceUpdate{
				update: bson.M{"$set": bson.M{
					"company.$[el].licenseType": licenseType,
					"license_type":              licenseType,
				}},
				opts: []*options.UpdateOptions{matchElement(companyID, bson.M{"el.isActive": true})},
			}
		}
		return &referenceUpdate{
			update: bson.M{"$set": bson.M{
				"company.licenseType": licenseType,
				"license_type":        licenseType,
			}},
		}
	}
}

// companyActiveDecision recomputes the cached isCompanyActive flag. Single-ref
// documents are unambiguous and always patch; multi-ref documents patch only
// when this company holds the active slot, so historical entries stay
// untouched.
func companyActiveDecision(companyID primitive.ObjectID, isCompanyActive bool) referenceDecision {
	return func(refs []affiliation.CompanyRef, isArray bool) *referenceUpdate {
		if !isArray {
			return &referenceUpdate{
				update: bson.M{"$set": bson.M{"company.isCompanyActive": isCompanyActive}},
			}
		}

		if len(refs) == 1 {
			return &referenceUpdate{
				update: bson.M{"$set": bson.M{"company.$[el].isCompanyActive": isCompanyActive}},
				opts:   []*options.UpdateOptions{matchElement(companyID, nil)},
			}
		}

		active, ok := affiliation.ActiveRef(refs)
		if !ok || active.ID != companyID {
			return nil
		}
		return &referenceUpdate{
			update: bson.M{"$set": bson.M{"company.$[el].isCompanyActive": isCompanyActive}},
			opts:   []*options.UpdateOptions{matchElement(companyID, bson.M{"el.isActive": true})},
		}
	}
}

// removeDecision strips every reference to the company. Array documents keep
// their remaining references; legacy single-object documents are left with an
// empty canonical array.
func removeDecision(companyID primitive.ObjectID) referenceDecision {
	return func(refs []affiliation.CompanyRef, isArray bool) *referenceUpdate {
		if isArray {
			return &referenceUpdate{
				update: bson.M{"$pull": bson.M{"company": bson.M{"id": bson.M{"$in": referenceIDs(companyID)}}}},
			}
		}
		return &referenceUpdate{
			update: bson.M{"$set": bson.M{"company": []affiliation.CompanyRef{}}},
		}
	}
}
