package model

import "time"

// Experience is a bookable activity such as a guided tour. It is catalog
// reference data: the API reads it, only the seeder writes it.
//
// Fields:
//
//	ID           – stable string key (e.g. exp_kayaking_001).
//	Price        – base price per guest; slots carry their own price.
//	MaxGroupSize – upper bound for a slot's total spots.
//	Images, Highlights, Included – stored as JSON arrays.
type Experience struct {
	ID           string
	Title        string
	Description  string
	Location     string
	Price        float64
	Duration     string
	Category     string
	Rating       float64
	Reviews      int
	MaxGroupSize int
	Images       []string
	Highlights   []string
	Included     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
