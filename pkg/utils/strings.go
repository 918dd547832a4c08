package utils

import "strings"

// Humanize turns a snake_case or kebab-case identifier into a display
// label: "grace_in_minutes" becomes "Grace In Minutes".
func Humanize(name string) string {
	normalized := strings.NewReplacer("_", " ", "-", " ").Replace(name)
	words := strings.Split(normalized, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Singularize strips the plural suffix from a resource label for form
// titles. Naive on purpose: every admin resource name pluralizes with "s".
func Singularize(label string) string {
	return strings.TrimSuffix(label, "s")
}
