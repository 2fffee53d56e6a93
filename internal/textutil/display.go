package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayName turns an identifier such as "left" or "mean_consensus" into a
// title-cased label ("Left", "Mean Consensus") for tables.
func DisplayName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.NewReplacer("_", " ", "-", " ").Replace(value)
	return titleCaser.String(strings.Join(strings.Fields(value), " "))
}
