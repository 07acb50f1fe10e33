package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseCarQuery_Defaults(t *testing.T) {
	q := ParseCarQuery(url.Values{}, 100)

	assert.Equal(t, bson.M{"status": "Available"}, q.Filter)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, int64(0), q.Skip())
	assert.Equal(t, int64(10), q.Limit())
}

func TestParseCarQuery_EqualityFilters(t *testing.T) {
	params := url.Values{
		"make":         {"Toyota"},
		"model":        {"Corolla"},
		"condition":    {"Used"},
		"transmission": {"Manual"},
		"bodyType":     {"Sedan"},
		"fuelType":     {"Petrol"},
	}

	q := ParseCarQuery(params, 100)

	assert.Equal(t, "Toyota", q.Filter["make"])
	assert.Equal(t, "Corolla", q.Filter["model"])
	assert.Equal(t, "Used", q.Filter["condition"])
	assert.Equal(t, "Manual", q.Filter["transmission"])
	assert.Equal(t, "Sedan", q.Filter["bodyType"])
	assert.Equal(t, "Petrol", q.Filter["fuelType"])
}

func TestParseCarQuery_DealerFilter(t *testing.T) {
	id := primitive.NewObjectID()

	q := ParseCarQuery(url.Values{"dealer": {id.Hex()}}, 100)
	assert.Equal(t, id, q.Filter["dealer"])

	// a malformed id stays a string so the filter matches nothing
	q = ParseCarQuery(url.Values{"dealer": {"not-an-id"}}, 100)
	assert.Equal(t, "not-an-id", q.Filter["dealer"])
}

func TestParseCarQuery_PriceRange(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		want   bson.M
	}{
		{"both bounds", url.Values{"minPrice": {"10000"}, "maxPrice": {"20000"}}, bson.M{"$gte": 10000.0, "$lte": 20000.0}},
		{"min only", url.Values{"minPrice": {"10000"}}, bson.M{"$gte": 10000.0}},
		{"max only", url.Values{"maxPrice": {"20000"}}, bson.M{"$lte": 20000.0}},
		{"absent", url.Values{}, nil},
		{"unparseable", url.Values{"minPrice": {"cheap"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseCarQuery(tt.params, 100)
			if tt.want == nil {
				assert.NotContains(t, q.Filter, "price")
				return
			}
			assert.Equal(t, tt.want, q.Filter["price"])
		})
	}
}

func TestParseCarQuery_YearRange(t *testing.T) {
	q := ParseCarQuery(url.Values{"minYear": {"2010"}, "maxYear": {"2020"}}, 100)
	assert.Equal(t, bson.M{"$gte": 2010, "$lte": 2020}, q.Filter["year"])
}

func TestParseCarQuery_StatusDefaultAndOverride(t *testing.T) {
	q := ParseCarQuery(url.Values{}, 100)
	assert.Equal(t, "Available", q.Filter["status"])

	q = ParseCarQuery(url.Values{"status": {"Sold"}}, 100)
	assert.Equal(t, "Sold", q.Filter["status"])

	// any explicit value overrides the default, with no enum validation
	q = ParseCarQuery(url.Values{"status": {"whatever"}}, 100)
	assert.Equal(t, "whatever", q.Filter["status"])
}

func TestParseCarQuery_Sort(t *testing.T) {
	tests := []struct {
		name string
		sort string
		want bson.D
	}{
		{"ascending", "price", bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}},
		{"descending", "-year", bson.D{{Key: "year", Value: -1}, {Key: "_id", Value: 1}}},
		{"absent", "", bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}},
		{"bare minus", "-", bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := url.Values{}
			if tt.sort != "" {
				params.Set("sort", tt.sort)
			}
			q := ParseCarQuery(params, 100)
			assert.Equal(t, tt.want, q.Sort)
		})
	}
}

func TestParseCarQuery_SortAlwaysHasTieBreak(t *testing.T) {
	for _, sort := range []string{"", "price", "-price", "year", "make"} {
		params := url.Values{}
		params.Set("sort", sort)
		q := ParseCarQuery(params, 100)
		require.NotEmpty(t, q.Sort)
		last := q.Sort[len(q.Sort)-1]
		assert.Equal(t, "_id", last.Key, "sort %q must end with the id tie-break", sort)
		assert.Equal(t, 1, last.Value)
	}
}

func TestParseCarQuery_Pagination(t *testing.T) {
	tests := []struct {
		name         string
		params       url.Values
		wantPage     int
		wantPageSize int
	}{
		{"defaults", url.Values{}, 1, 10},
		{"explicit", url.Values{"page": {"3"}, "pageSize": {"25"}}, 3, 25},
		{"zero page", url.Values{"page": {"0"}}, 1, 10},
		{"negative page", url.Values{"page": {"-2"}}, 1, 10},
		{"garbage", url.Values{"page": {"abc"}, "pageSize": {"xyz"}}, 1, 10},
		{"clamped to max", url.Values{"pageSize": {"100000"}}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseCarQuery(tt.params, 100)
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantPageSize, q.PageSize)
		})
	}
}

func TestParseCarQuery_Skip(t *testing.T) {
	q := ParseCarQuery(url.Values{"page": {"4"}, "pageSize": {"15"}}, 100)
	assert.Equal(t, int64(45), q.Skip())
	assert.Equal(t, int64(15), q.Limit())
}

func TestParseDealerCarsQuery(t *testing.T) {
	id := primitive.NewObjectID()

	q := ParseDealerCarsQuery(id, url.Values{}, 100)
	assert.Equal(t, bson.M{"dealer": id, "status": "Available"}, q.Filter)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)

	// status override and paging apply, but client sort does not
	q = ParseDealerCarsQuery(id, url.Values{"status": {"Sold"}, "sort": {"-price"}, "page": {"2"}}, 100)
	assert.Equal(t, "Sold", q.Filter["status"])
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, q.Sort)
	assert.Equal(t, 2, q.Page)
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		pageSize int
		want     int64
	}{
		{"empty", 0, 10, 0},
		{"exact", 20, 10, 2},
		{"partial last page", 21, 10, 3},
		{"single item", 1, 10, 1},
		{"one short of a page", 9, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.total, tt.pageSize))
		})
	}
}
