package models

// Category is a named tag that contacts can be linked to.
type Category struct {
	// ID is the unique identifier for the category (UUID format).
	ID string

	// Name is unique across categories.
	Name string
}

// DefaultCategories are seeded on first start unless configured otherwise.
var DefaultCategories = []string{"Emergency", "Cyclone", "HOD", "Manager"}
