package domain

import (
	"strings"
	"time"
)

// Category is the fixed classification of an event.
type Category string

const (
	CategoryMusic     Category = "Music"
	CategorySports    Category = "Sports"
	CategoryTech      Category = "Tech"
	CategoryArt       Category = "Art"
	CategoryFood      Category = "Food"
	CategoryBusiness  Category = "Business"
	CategoryEducation Category = "Education"
	CategoryHealth    Category = "Health"
	CategoryGaming    Category = "Gaming"
	CategoryTravel    Category = "Travel"
	CategoryFashion   Category = "Fashion"
	CategoryOther     Category = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryMusic, CategorySports, CategoryTech, CategoryArt,
	CategoryFood, CategoryBusiness, CategoryEducation, CategoryHealth,
	CategoryGaming, CategoryTravel, CategoryFashion, CategoryOther,
}

// ParseCategory matches s case-insensitively against the fixed set and
// returns the canonical Title Case value.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Event is a published event. CreatorID never changes after creation.
type Event struct {
	ID          string
	Title       string
	Category    Category
	Date        time.Time
	Location    string
	Description string
	Price       float64
	CreatorID   string
	Attendees   []string // user ids
	Img         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanBeManagedBy reports whether u may update or delete the event.
func (e *Event) CanBeManagedBy(u *User) bool {
	if e == nil || u == nil {
		return false
	}
	return e.CreatorID == u.ID || u.IsAdmin()
}

// dateLayouts are tried in order when parsing user-supplied event dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEventDate parses a calendar date or timestamp. Values without a zone
// are read as UTC.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{Field: "date", Message: "date must be a valid calendar date"}
}

// DayBounds returns the [start, end) UTC interval of the day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
