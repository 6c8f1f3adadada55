// Package query composes search, filter and pagination clauses for list
// endpoints into a MongoDB query description.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FieldType describes how a declared filterable field's values are matched.
type FieldType int

const (
	String FieldType = iota
	Number
)

// Schema declares which fields a resource accepts filters on, and how their
// values are typed.
type Schema map[string]FieldType

// reserved query keys handled by Search and Pagination, never by Filter.
var reservedKeys = map[string]bool{
	"keyword": true,
	"page":    true,
	"limit":   true,
}

// comparison operators accepted inside a field[op]=value filter.
var operators = map[string]string{
	"gt":  "$gt",
	"lt":  "$lt",
	"gte": "$gte",
	"lte": "$lte",
}

// Query is an immutable query description. Each stage returns a new value;
// the original is never mutated, so partial pipelines can be reused.
type Query struct {
	params   url.Values
	schema   Schema
	criteria bson.M
	skip     int64
	limit    int64
}

// New starts a query pipeline over the given request parameters, constrained
// to the fields the schema declares filterable.
func New(params url.Values, schema Schema) Query {
	return Query{
		params:   params,
		schema:   schema,
		criteria: bson.M{},
	}
}

// Search restricts results to documents whose name contains the keyword
// parameter, case-insensitively. No keyword, no restriction.
func (q Query) Search() Query {
	keyword := q.params.Get("keyword")
	if keyword == "" {
		return q
	}

	next := q.clone()
	next.criteria["name"] = primitive.Regex{Pattern: keyword, Options: "i"}
	return next
}

// Filter translates the remaining parameters into field predicates. Plain
// values match for equality; bracketed values like price[gt]=100 become the
// corresponding comparison. All predicates are ANDed. Fields outside the
// schema are ignored; an operator outside {gt,lt,gte,lte} is embedded as a
// literal sub-field match.
func (q Query) Filter() Query {
	next := q.clone()

	for key, values := range q.params {
		if reservedKeys[key] || len(values) == 0 {
			continue
		}

		field, op, ok := splitFilterKey(key)
		ftype, declared := q.schema[field]
		if !declared {
			continue
		}

		for _, raw := range values {
			value := convertValue(raw, ftype)
			if !ok {
				next.criteria[field] = value
				continue
			}

			sub, isSub := next.criteria[field].(bson.M)
			if !isSub {
				sub = bson.M{}
				next.criteria[field] = sub
			}
			if mongoOp, known := operators[op]; known {
				sub[mongoOp] = value
			} else {
				sub[op] = value
			}
		}
	}

	return next
}

// Pagination limits the result to perPage items starting at the offset for
// the requested page. A missing or malformed page parameter means page 1.
func (q Query) Pagination(perPage int) Query {
	page, err := strconv.Atoi(q.params.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	next := q.clone()
	next.skip = int64(perPage) * int64(page-1)
	next.limit = int64(perPage)
	return next
}

// Criteria returns the accumulated match criteria. Counting documents against
// it before Pagination yields the total match count.
func (q Query) Criteria() bson.M {
	out := bson.M{}
	for k, v := range q.criteria {
		out[k] = v
	}
	return out
}

// FindOptions returns the skip/limit options accumulated by Pagination.
func (q Query) FindOptions() *options.FindOptions {
	opts := options.Find()
	if q.limit > 0 {
		opts.SetSkip(q.skip)
		opts.SetLimit(q.limit)
	}
	return opts
}

func (q Query) clone() Query {
	criteria := bson.M{}
	for k, v := range q.criteria {
		if sub, isSub := v.(bson.M); isSub {
			copied := bson.M{}
			for sk, sv := range sub {
				copied[sk] = sv
			}
			criteria[k] = copied
			continue
		}
		criteria[k] = v
	}

	return Query{
		params:   q.params,
		schema:   q.schema,
		criteria: criteria,
		skip:     q.skip,
		limit:    q.limit,
	}
}

// splitFilterKey parses "price[gt]" into ("price", "gt", true). Keys without
// brackets come back with ok=false.
func splitFilterKey(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open < 1 || !strings.HasSuffix(key, "]") {
		return key, "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}

// convertValue parses numeric filter values for number-typed fields. Values
// that fail to parse are matched as the literal string.
func convertValue(raw string, ftype FieldType) interface{} {
	if ftype == Number {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}
