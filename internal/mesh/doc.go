// Package mesh reads and writes surfaces as legacy VTK polydata.
//
// Only the pieces surfvote needs are understood: ASCII files with a POINTS
// section and a POLYGONS section. Geometry is carried through unchanged and
// never validated beyond what parsing requires. Existing point or cell data
// in an input file is dropped; Write attaches the vote fields as integer
// point-data scalars.
package mesh
