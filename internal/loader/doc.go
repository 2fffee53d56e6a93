// Package loader turns the annotation files found by discovery into
// per-hemisphere collections of canonical label vectors.
//
// Files are decoded in parallel but returned in scan order, so the vote's
// first-maximum tie-break stays tied to file-name order. Hemispheres load
// independently: a bad file fails its own hemisphere and nothing else.
// Inputs may be stored raw or compressed with gzip (.gz), zstd (.zst), or
// lz4 (.lz4).
package loader
