package affiliation

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Normalize converts any historical representation of an affiliate's company
// field into the canonical reference array. Three generations coexist in the
// store and all must be read transparently:
//
//	nil                      -> empty array
//	"Acme"                   -> [{name: "Acme"}]           (unresolved legacy name)
//	{id, name, ...}          -> [{id, name, ...}]          (legacy single object)
//	[{...}, "Acme", ...]     -> one entry per element      (current shape)
//
// Ids are kept as native ObjectIDs; valid hex strings are parsed, anything
// else yields a zero id. Insertion order is preserved. The bare-string form is
// a read-path helper only and is never written back.
func Normalize(raw interface{}) []CompanyRef {
	switch v := raw.(type) {
	case nil:
		return []CompanyRef{}
	case string:
		if v == "" {
			return []CompanyRef{}
		}
		return []CompanyRef{{Name: v}}
	case []CompanyRef:
		out := make([]CompanyRef, len(v))
		copy(out, v)
		return out
	case CompanyRef:
		return []CompanyRef{v}
	case primitive.A:
		return normalizeList(v)
	case []interface{}:
		return normalizeList(v)
	default:
		if doc, ok := asDocument(raw); ok {
			return []CompanyRef{refFromDocument(doc)}
		}
		return []CompanyRef{}
	}
}

// NormalizeForResponse is the API-boundary variant of Normalize: ids are
// stringified so they can cross the HTTP boundary as text. The result must
// never be persisted.
func NormalizeForResponse(raw interface{}) []RefView {
	return ViewsFrom(Normalize(raw))
}

func normalizeList(items []interface{}) []CompanyRef {
	refs := make([]CompanyRef, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				refs = append(refs, CompanyRef{Name: v})
			}
		case CompanyRef:
			refs = append(refs, v)
		default:
			if doc, ok := asDocument(item); ok {
				refs = append(refs, refFromDocument(doc))
			}
		}
	}
	return refs
}

// asDocument flattens the mapping types produced by the bson and json
// decoders into a plain map. Copying here also protects the caller from
// aliasing mutations on the original document.
func asDocument(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, true
	case bson.M:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, true
	case bson.D:
		out := make(map[string]interface{}, len(v))
		for _, e := range v {
			out[e.Key] = e.Value
		}
		return out, true
	default:
		return nil, false
	}
}

func refFromDocument(doc map[string]interface{}) CompanyRef {
	ref := CompanyRef{
		ID:              objectIDValue(doc["id"]),
		Name:            stringValue(doc["name"]),
		IsActive:        boolValue(doc["isActive"]),
		IsCompanyActive: boolValue(doc["isCompanyActive"]),
		LicenseType:     stringValue(doc["licenseType"]),
	}
	return ref
}

func objectIDValue(v interface{}) primitive.ObjectID {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id
	case string:
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			return oid
		}
	}
	return primitive.NilObjectID
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func boolValue(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
