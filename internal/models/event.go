// Package models defines the calendar and wishlist record types and the
// snapshot document that carries them to the remote backend.
package models

// Category classifies a calendar event.
type Category string

const (
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryImportant Category = "important"
	CategoryOther     Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryImportant, CategoryOther:
		return true
	}
	return false
}

// Event is a single calendar entry. Older snapshots carry a single Date
// (YYYY-MM-DD); newer ones carry a Start/End pair of full timestamps.
// Both shapes are kept as optional fields so either version round-trips
// through the remote document unchanged.
type Event struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date,omitempty"`
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	Category    Category `json:"category"`
}
