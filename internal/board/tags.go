package board

import (
	"slices"
	"strings"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// ParseTags splits a comma-separated tag string, dropping blanks and
// case-insensitive duplicates. Order and the first spelling are kept.
func ParseTags(s string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(part)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}

// AllTags lists the distinct tags across tasks, sorted case-insensitively.
func AllTags(tasks []model.Task) []string {
	var all []string
	seen := make(map[string]bool)
	for _, t := range tasks {
		for _, tag := range ParseTags(t.Tags) {
			if key := strings.ToLower(tag); !seen[key] {
				seen[key] = true
				all = append(all, tag)
			}
		}
	}
	slices.SortFunc(all, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return all
}
