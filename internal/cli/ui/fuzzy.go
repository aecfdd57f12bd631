package ui

import (
	"errors"
	"sort"
	"strings"

	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

const (
	// DefaultMaxDistance is the default maximum edit distance to consider for fuzzy matching
	DefaultMaxDistance = 2
	// DefaultMaxSuggestions is the default maximum number of suggestions to return
	DefaultMaxSuggestions = 3
)

// suggestion represents a fuzzy match result with its edit distance
type suggestion struct {
	value    string
	distance int
}

// FindSimilar returns up to DefaultMaxSuggestions candidates within
// DefaultMaxDistance of target, closest first. Matching ignores case.
//
// Example:
//
//	FindSimilar("Pst", []string{"Post", "User", "Tag"}) // ["Post"]
func FindSimilar(target string, candidates []string) []string {
	var suggestions []suggestion
	for _, candidate := range candidates {
		dist := LevenshteinDistance(strings.ToLower(target), strings.ToLower(candidate))
		if dist <= DefaultMaxDistance {
			suggestions = append(suggestions, suggestion{value: candidate, distance: dist})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].distance < suggestions[j].distance
	})

	result := make([]string, 0, DefaultMaxSuggestions)
	for i := 0; i < len(suggestions) && i < DefaultMaxSuggestions; i++ {
		result = append(result, suggestions[i].value)
	}
	return result
}

// LevenshteinDistance calculates the Levenshtein distance between two strings
//
// Example:
//
//	LevenshteinDistance("kitten", "sitting") // Returns: 3
func LevenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

// SuggestRef proposes corrections for a dangling reference: list names close
// to the referenced list, or field names of that list close to the referenced
// field. Other errors get no suggestions.
func SuggestRef(err error, m *schema.Model) []string {
	var dangling *relerrors.DanglingReferenceError
	if !errors.As(err, &dangling) || m == nil {
		return nil
	}

	ref, perr := schema.ParseRef(dangling.Ref)
	if perr != nil {
		return nil
	}

	var lists []string
	for _, l := range m.Lists {
		if l.Name == ref.List {
			if !ref.HasField() {
				return nil
			}
			var fields []string
			for _, f := range l.Fields {
				fields = append(fields, f.Name)
			}
			var out []string
			for _, f := range FindSimilar(ref.Field, fields) {
				out = append(out, l.Name+"."+f)
			}
			return out
		}
		lists = append(lists, l.Name)
	}

	var out []string
	for _, name := range FindSimilar(ref.List, lists) {
		if ref.HasField() {
			name += "." + ref.Field
		}
		out = append(out, name)
	}
	return out
}
