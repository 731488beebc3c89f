package mongodb_adapter

import (
	"regexp"
	"strings"

	"listing-service/internal/core/domain"

	"go.mongodb.org/mongo-driver/bson"
)

// buildFilter translates the predicate part of a ListQuery to BSON.
func buildFilter(q domain.ListQuery) bson.M {
	clauses := make([]bson.M, 0, len(q.Base)+len(q.Filters)+2)

	for _, c := range q.Where() {
		switch c.Op {
		case domain.OpGte:
			clauses = append(clauses, bson.M{c.Path: bson.M{"$gte": c.Value}})
		case domain.OpLte:
			clauses = append(clauses, bson.M{c.Path: bson.M{"$lte": c.Value}})
		default:
			// equality on a scalar and membership on an array look the same in BSON
			clauses = append(clauses, bson.M{c.Path: c.Value})
		}
	}

	if q.Search != "" && len(q.SearchFields) > 0 {
		pattern := regexp.QuoteMeta(q.Search)
		or := make(bson.A, 0, len(q.SearchFields))
		for _, f := range q.SearchFields {
			or = append(or, bson.M{f: bson.M{"$regex": pattern, "$options": "i"}})
		}
		clauses = append(clauses, bson.M{"$or": or})
	}

	if len(q.Near) > 0 {
		cells := make([]string, len(q.Near))
		for i, c := range q.Near {
			cells[i] = regexp.QuoteMeta(c)
		}
		clauses = append(clauses, bson.M{"geohash": bson.M{"$regex": "^(" + strings.Join(cells, "|") + ")"}})
	}

	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": clauses}
}

func buildSort(s domain.SortSpec) bson.D {
	direction := 1
	if s.Desc {
		direction = -1
	}
	return bson.D{{Key: s.Path, Value: direction}, {Key: "_id", Value: 1}}
}
