// Package discovery finds the annotation files that belong to one labeling
// scheme and sorts them into hemispheres by file-name prefix.
//
// Files are returned in lexical order. That order is the scan order the vote
// tie-break depends on, so callers must not reorder the groups.
package discovery
