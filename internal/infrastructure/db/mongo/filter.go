package mongo

import (
	"math"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eventhub/events-api/internal/core/ports"
)

// containsFold matches s anywhere in a field, ignoring case. User input is
// quoted so it is never interpreted as a pattern.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// pageSkip returns the number of documents before a 1-based page,
// saturating instead of overflowing.
func pageSkip(page, limit int) int64 {
	if page <= 1 || limit <= 0 {
		return 0
	}
	pages := int64(page - 1)
	if pages > math.MaxInt64/int64(limit) {
		return math.MaxInt64
	}
	return pages * int64(limit)
}

// buildEventFilter translates the listing filter into a query document.
func buildEventFilter(f ports.ListEventsFilter) bson.M {
	filter := bson.M{}
	if f.Title != "" {
		filter["title"] = containsFold(f.Title)
	}
	if f.Location != "" {
		filter["location"] = f.Location
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	date := bson.M{}
	if !f.MinDate.IsZero() {
		date["$gte"] = f.MinDate
	}
	if !f.MaxDate.IsZero() {
		date["$lte"] = f.MaxDate
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	return filter
}
