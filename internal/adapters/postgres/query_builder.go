package postgres_adapter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"listing-service/internal/core/domain"
)

var pathRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*(\.[A-Za-z][A-Za-z0-9]*)*$`)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) addArg(arg interface{}) string {
	placeholder := fmt.Sprintf("$%d", qb.argId)
	qb.args = append(qb.args, arg)
	qb.argId++
	return placeholder
}

func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// jsonText addresses a dotted document path as text: doc #>> '{a,b}'.
func jsonText(path string) (string, error) {
	if !pathRe.MatchString(path) {
		return "", fmt.Errorf("invalid document path %q", path)
	}
	return fmt.Sprintf("doc #>> '{%s}'", strings.ReplaceAll(path, ".", ",")), nil
}

func jsonValue(path string) (string, error) {
	if !pathRe.MatchString(path) {
		return "", fmt.Errorf("invalid document path %q", path)
	}
	return fmt.Sprintf("doc #> '{%s}'", strings.ReplaceAll(path, ".", ",")), nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// applyListQuery translates the predicate part of a ListQuery.
func applyListQuery(q domain.ListQuery) (*queryBuilder, error) {
	qb := newQueryBuilder()

	for _, c := range q.Where() {
		if err := qb.addDocCondition(c); err != nil {
			return nil, err
		}
	}

	if q.Search != "" && len(q.SearchFields) > 0 {
		placeholder := qb.addArg("%" + escapeLike(q.Search) + "%")
		parts := make([]string, 0, len(q.SearchFields))
		for _, f := range q.SearchFields {
			field, err := jsonText(f)
			if err != nil {
				return nil, err
			}
			parts = append(parts, fmt.Sprintf("%s ILIKE %s", field, placeholder))
		}
		qb.conditions = append(qb.conditions, "("+strings.Join(parts, " OR ")+")")
	}

	if len(q.Near) > 0 {
		parts := make([]string, 0, len(q.Near))
		for _, cell := range q.Near {
			parts = append(parts, fmt.Sprintf("doc ->> 'geohash' LIKE %s", qb.addArg(escapeLike(cell)+"%")))
		}
		qb.conditions = append(qb.conditions, "("+strings.Join(parts, " OR ")+")")
	}

	return qb, nil
}

func (qb *queryBuilder) addDocCondition(c domain.Condition) error {
	switch c.Type {
	case domain.FieldList:
		field, err := jsonValue(c.Path)
		if err != nil {
			return err
		}
		if c.Op != domain.OpContains {
			return fmt.Errorf("operator %s is not supported on list %s", c.Op, c.Path)
		}
		qb.addCondition("%s ? $%d", field, fmt.Sprint(c.Value))
		return nil

	case domain.FieldNumber:
		field, err := jsonText(c.Path)
		if err != nil {
			return err
		}
		field = "(" + field + ")::numeric"
		switch c.Op {
		case domain.OpGte:
			qb.addCondition("%s >= $%d", field, c.Value)
		case domain.OpLte:
			qb.addCondition("%s <= $%d", field, c.Value)
		default:
			qb.addCondition("%s = $%d", field, c.Value)
		}
		return nil

	case domain.FieldBool:
		field, err := jsonText(c.Path)
		if err != nil {
			return err
		}
		b, _ := c.Value.(bool)
		qb.addCondition("%s = $%d", field, strconv.FormatBool(b))
		return nil

	default:
		field, err := jsonText(c.Path)
		if err != nil {
			return err
		}
		if c.Op != domain.OpEq {
			return fmt.Errorf("operator %s is not supported on text %s", c.Op, c.Path)
		}
		qb.addCondition("%s = $%d", field, fmt.Sprint(c.Value))
		return nil
	}
}

// orderClause sorts by the requested path with id as the tie-breaker so
// pages are stable.
func orderClause(s domain.SortSpec) (string, error) {
	field, err := jsonText(s.Path)
	if err != nil {
		return "", err
	}
	switch s.Type {
	case domain.FieldNumber:
		field = "(" + field + ")::numeric"
	case domain.FieldTime:
		field = "(" + field + ")::timestamptz"
	}
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, id ASC", field, direction), nil
}
