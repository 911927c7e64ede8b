// Package source models the source side of the forward problem: candidate
// dipole locations grouped into source spaces (one per hemisphere), named
// anatomical labels, and source estimates (per-vertex time courses).
//
// A SourceSpace distinguishes the full vertex set (NPoints) from the
// subset actually carrying sources (Vertno, strictly increasing). All
// per-source arrays in this module (normals, patch statistics, gain
// columns) are aligned with Vertno order; restriction operations preserve
// that alignment by construction.
//
// Labels are persisted as small YAML documents so they stay editable by
// hand; see ReadLabel and WriteLabel.
package source
