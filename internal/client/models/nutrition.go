package models

// Nutrition holds per-serving values shown next to a detection.
type Nutrition struct {
	Calories     int
	ProteinGrams int
	FatGrams     int
}

// PlaceholderNutrition is displayed for every dish until the API serves real values.
var PlaceholderNutrition = Nutrition{Calories: 450, ProteinGrams: 24, FatGrams: 12}
