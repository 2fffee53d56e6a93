// Package pipeline runs one subject end to end: discover the annotation
// files, load them per hemisphere, vote, and attach the result to each
// configured surface mesh.
//
// Hemispheres are independent. A hemisphere that fails to load, vote, or
// write is recorded in the Summary with the stage that failed, and the other
// hemisphere still runs. Run reports an error only when setup fails or when
// no hemisphere produced output.
//
// Layout follows FreeSurfer: annotations are read from
// <subjects>/<subject>/label, meshes from <subjects>/<subject>/surf as
// <hemi>.<surface>.vtk, and outputs are written as
// <hemi>.<surface>.labels.vtk into the label directory or
// <output_dir>/<subject>.
package pipeline
