// Package vote reduces several per-vertex labelings of one hemisphere to a
// single majority-vote labeling.
//
// Each vertex is decided independently. Ties go to the label that was seen
// first when scanning the collection in order, which keeps output
// reproducible for a fixed file order. Consensus and diversity arrays are
// only built when Options.ComputeDiversity is set.
package vote
