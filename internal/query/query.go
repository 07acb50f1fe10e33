// Package query translates listing request parameters into deterministic,
// bounded store queries.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// equality filter parameters that pass through to document fields of the
// same name
var equalityFields = []string{"make", "model", "condition", "transmission", "bodyType", "fuelType"}

// CarQuery is a fully resolved listing query: filter, sort order and paging
// bounds. For a fixed CarQuery and an unchanged data set, repeated execution
// returns identical ordering and contents.
type CarQuery struct {
	Filter   bson.M
	Sort     bson.D
	Page     int
	PageSize int
}

// Skip returns the number of documents to skip for the requested page.
func (q CarQuery) Skip() int64 {
	return int64(q.PageSize) * int64(q.Page-1)
}

// Limit returns the page size as a query limit.
func (q CarQuery) Limit() int64 {
	return int64(q.PageSize)
}

// ParseCarQuery builds a CarQuery from listing request parameters.
//
// Equality filters narrow to exact match; minPrice/maxPrice and
// minYear/maxYear are inclusive bounds. The status filter defaults to
// Available and any explicit value overrides it without enum validation.
// Sort accepts a field name with an optional leading minus for descending,
// defaulting to newest first. An id ascending tie-break keeps page
// boundaries stable across equal sort values.
func ParseCarQuery(params url.Values, maxPageSize int) CarQuery {
	filter := bson.M{}

	for _, field := range equalityFields {
		if v := params.Get(field); v != "" {
			filter[field] = v
		}
	}

	if v := params.Get("dealer"); v != "" {
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			filter["dealer"] = oid
		} else {
			// malformed id matches nothing rather than erroring
			filter["dealer"] = v
		}
	}

	if rng := rangeFilter(params, "minPrice", "maxPrice", parseFloat); rng != nil {
		filter["price"] = rng
	}
	if rng := rangeFilter(params, "minYear", "maxYear", parseInt); rng != nil {
		filter["year"] = rng
	}

	status := params.Get("status")
	if status == "" {
		status = "Available"
	}
	filter["status"] = status

	return CarQuery{
		Filter:   filter,
		Sort:     parseSort(params.Get("sort")),
		Page:     parsePage(params.Get("page")),
		PageSize: parsePageSize(params.Get("pageSize"), maxPageSize),
	}
}

// ParseDealerCarsQuery builds the single-dealer listing query: same status
// default and paging contract, fixed newest-first order, no client sort.
func ParseDealerCarsQuery(dealerID primitive.ObjectID, params url.Values, maxPageSize int) CarQuery {
	status := params.Get("status")
	if status == "" {
		status = "Available"
	}

	return CarQuery{
		Filter:   bson.M{"dealer": dealerID, "status": status},
		Sort:     defaultSort(),
		Page:     parsePage(params.Get("page")),
		PageSize: parsePageSize(params.Get("pageSize"), maxPageSize),
	}
}

// ParsePagination reads bare page/pageSize parameters for list endpoints
// without a filter surface.
func ParsePagination(params url.Values, maxPageSize int) (page, pageSize int) {
	return parsePage(params.Get("page")), parsePageSize(params.Get("pageSize"), maxPageSize)
}

// TotalPages computes ceil(total/pageSize), 0 when total is 0.
func TotalPages(total int64, pageSize int) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}

func defaultSort() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
}

func parseSort(raw string) bson.D {
	if raw == "" {
		return defaultSort()
	}
	field := raw
	order := 1
	if strings.HasPrefix(raw, "-") {
		field = raw[1:]
		order = -1
	}
	if field == "" {
		return defaultSort()
	}
	return bson.D{{Key: field, Value: order}, {Key: "_id", Value: 1}}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return DefaultPage
	}
	return page
}

func parsePageSize(raw string, maxPageSize int) int {
	size, err := strconv.Atoi(raw)
	if err != nil || size < 1 {
		return DefaultPageSize
	}
	if maxPageSize > 0 && size > maxPageSize {
		return maxPageSize
	}
	return size
}

func rangeFilter(params url.Values, minKey, maxKey string, parse func(string) (interface{}, bool)) bson.M {
	rng := bson.M{}
	if v, ok := parse(params.Get(minKey)); ok {
		rng["$gte"] = v
	}
	if v, ok := parse(params.Get(maxKey)); ok {
		rng["$lte"] = v
	}
	if len(rng) == 0 {
		return nil
	}
	return rng
}

func parseFloat(raw string) (interface{}, bool) {
	if raw == "" {
		return nil, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return v, true
}

func parseInt(raw string) (interface{}, bool) {
	if raw == "" {
		return nil, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return v, true
}
