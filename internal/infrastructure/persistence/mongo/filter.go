package mongo

import (
	"strings"

	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// buildQuery translates the shared filter into a Mongo filter document.
// Search does an anchored-nowhere regex over the given fields; extra filters
// become plain equality matches.
func buildQuery(filter shared.Filter, searchFields ...string) bson.M {
	query := bson.M{}

	if filter.Search != "" && len(searchFields) > 0 {
		pattern := primitive.Regex{Pattern: escapeRegex(filter.Search), Options: "i"}
		or := make([]bson.M, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: pattern})
		}
		query["$or"] = or
	}

	for key, value := range filter.Filters {
		query[key] = value
	}

	return query
}

// findOptions translates pagination and ordering into mongo options
func findOptions(filter shared.Filter) *options.FindOptions {
	opts := options.Find()
	if filter.Offset() > 0 {
		opts.SetSkip(filter.Offset())
	}
	if filter.Limit() > 0 {
		opts.SetLimit(filter.Limit())
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	direction := 1
	if strings.EqualFold(filter.OrderDir, "desc") {
		direction = -1
	}
	opts.SetSort(bson.D{{Key: orderBy, Value: direction}})

	return opts
}

// escapeRegex quotes regex metacharacters so user search input matches
// literally.
func escapeRegex(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
