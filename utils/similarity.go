package utils

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// SimilarityRatio returns a normalized 0-100 similarity score between two
// passwords using an edit-distance based ratio.
func SimilarityRatio(oldPassword, newPassword string) int {
	return fuzzy.Ratio(oldPassword, newPassword)
}
