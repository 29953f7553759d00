package core

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Pluralize applies the naive English rule used for collection names: a
// trailing "y" becomes "ies", anything else gets an "s".
func Pluralize(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}
	if strings.HasSuffix(word, "y") {
		return strings.TrimSuffix(word, "y") + "ies"
	}
	return word + "s"
}

// CollectionSlug turns a model type name into its collection path segment.
func CollectionSlug(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return ""
	}
	return Pluralize(strcase.ToKebab(model))
}
