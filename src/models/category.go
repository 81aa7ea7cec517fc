package models

// Category is reference data, seeded by migration and read-only to the app.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
