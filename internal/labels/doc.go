// Package labels merges semantically duplicate annotation labels into a
// reduced canonical set before voting.
package labels
