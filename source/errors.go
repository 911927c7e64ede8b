// SPDX-License-Identifier: MIT
// Package source: sentinel error set.

package source

import "errors"

var (
	// ErrVertnoOrder indicates that a vertex list is not strictly increasing
	// or references vertices outside [0, NPoints).
	ErrVertnoOrder = errors.New("source: vertno must be strictly increasing and in range")

	// ErrShapeMismatch indicates per-source arrays whose shape disagrees with
	// the vertex list (normals not nuse x 3, estimate rows != vertex count).
	ErrShapeMismatch = errors.New("source: array shape disagrees with vertex count")

	// ErrLabelFormat indicates a malformed on-disk label document.
	ErrLabelFormat = errors.New("source: malformed label file")

	// ErrHemisphere indicates an unknown hemisphere tag.
	ErrHemisphere = errors.New("source: unknown hemisphere")
)
