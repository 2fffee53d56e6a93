package logging

import "strings"

// FormatSubject builds the "subject · hemisphere" tag used in console output.
func FormatSubject(subject, hemisphere string) string {
	subject = strings.TrimSpace(subject)
	hemisphere = strings.TrimSpace(hemisphere)
	switch {
	case subject != "" && hemisphere != "":
		return subject + " · " + hemisphere
	case subject != "":
		return subject
	default:
		return hemisphere
	}
}
