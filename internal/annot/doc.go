// Package annot reads and writes FreeSurfer surface annotation files.
//
// An annotation file stores one packed color value per surface vertex and a
// color table that names each region. Two color-table layouts exist on disk:
// the legacy single-table layout and the version 2 extended layout. Both are
// big-endian and both are handled by Decode. By default decoded vertex labels
// are rewritten to color-table positions so that labels from different files
// of the same annotation scheme line up; DecodeOptions.KeepOriginalIDs
// disables that step.
//
// Decode never returns a partially populated Annotation alongside an error.
// Malformed input surfaces as a *FormatError carrying the byte offset of the
// field that could not be read.
package annot
