// Completion: 100% - Utility module complete
package engine

import (
	"sort"
	"strings"
)

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Create matrix
	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}

	// Initialize first row and column
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost) // substitution
		}
	}

	return matrix[len(s1)][len(s2)]
}

// findSimilarNames returns the known names within a small edit distance of name,
// closest first
func findSimilarNames(name string, known []string, maxSuggestions int) []string {
	type suggestion struct {
		name     string
		distance int
	}

	var suggestions []suggestion
	threshold := 2 // Maximum edit distance for suggestions

	name = strings.ToLower(name)
	for _, candidate := range known {
		dist := levenshteinDistance(name, candidate)
		if dist <= threshold && dist > 0 {
			suggestions = append(suggestions, suggestion{candidate, dist})
		}
	}

	// Sort by distance (closest first)
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].distance == suggestions[j].distance {
			return suggestions[i].name < suggestions[j].name
		}
		return suggestions[i].distance < suggestions[j].distance
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(suggestions) && i < maxSuggestions; i++ {
		result = append(result, suggestions[i].name)
	}
	return result
}

// didYouMean formats the closest known name as a hint, or returns ""
func didYouMean(name string, known []string) string {
	similar := findSimilarNames(name, known, 1)
	if len(similar) == 0 {
		return ""
	}
	return " (did you mean " + similar[0] + "?)"
}
