// Package resolver expands templated paths into concrete request paths
// using values accumulated in the context store.
package resolver

import (
	"regexp"
	"strings"

	"api-contract-validator/internal/contextstore"
)

var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Placeholders returns the {name} placeholders of template in left-to-right
// order, duplicates included.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Resolve substitutes every combination of candidate values into template
// and returns the concrete paths. A template without placeholders resolves
// to itself. Combinations enumerate in row-major order: the first
// placeholder varies slowest, the last varies fastest. maxFanout caps the
// number of paths produced; exceeding it truncates the tail rather than
// failing.
func Resolve(template string, store *contextstore.Store, maxFanout int) []string {
	names := Placeholders(template)
	if len(names) == 0 {
		return []string{template}
	}

	candidates := make([][]string, len(names))
	for i, name := range names {
		candidates[i] = store.Lookup(name)
	}

	total := 1
	for _, c := range candidates {
		total *= len(c)
	}
	if maxFanout > 0 && total > maxFanout {
		total = maxFanout
	}

	resolved := make([]string, 0, total)
	indices := make([]int, len(names))
	for len(resolved) < total {
		path := template
		for i, name := range names {
			path = strings.Replace(path, "{"+name+"}", candidates[i][indices[i]], 1)
		}
		resolved = append(resolved, path)

		// Advance the last index first so the first placeholder
		// varies slowest.
		for i := len(indices) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(candidates[i]) {
				break
			}
			indices[i] = 0
		}
	}
	return resolved
}
