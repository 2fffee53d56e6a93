// Package textutil holds small string helpers shared by the CLI and the
// metrics exporter: lowercase filesystem-safe tokens and display casing for
// names such as hemispheres and field labels.
package textutil
