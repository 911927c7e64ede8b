// SPDX-License-Identifier: MIT

package source

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Label is a named set of vertices on one hemisphere, typically an
// anatomical region. Vertices are kept sorted ascending and unique.
type Label struct {
	Name     string     `yaml:"name"`
	Hemi     Hemisphere `yaml:"hemisphere"`
	Vertices []int      `yaml:"vertices"`

	// Values optionally carries one scalar per vertex (e.g. a statistical
	// weight); nil when absent. Aligned with Vertices.
	Values []float64 `yaml:"values,omitempty"`
}

// NewLabel builds a Label, sorting and de-duplicating vertices.
// Values (when given) must align with the de-duplicated vertex list.
func NewLabel(name string, hemi Hemisphere, vertices []int) (*Label, error) {
	if hemi != LeftHemi && hemi != RightHemi {
		return nil, fmt.Errorf("%q: %w", hemi, ErrHemisphere)
	}
	vs := append([]int(nil), vertices...)
	sort.Ints(vs)
	// de-duplicate in place
	out := vs[:0]
	for i, v := range vs {
		if i == 0 || v != vs[i-1] {
			out = append(out, v)
		}
	}

	return &Label{Name: name, Hemi: hemi, Vertices: out}, nil
}

// ReadLabel loads a label from a YAML document on disk.
// Returns ErrLabelFormat for documents that do not decode or that violate
// the label invariants (unknown hemisphere, values/vertices mismatch).
func ReadLabel(path string) (*Label, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ReadLabel: %w", err)
	}

	var l Label
	if err = yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("ReadLabel %s: %v: %w", path, err, ErrLabelFormat)
	}
	if l.Hemi != LeftHemi && l.Hemi != RightHemi {
		return nil, fmt.Errorf("ReadLabel %s: hemisphere %q: %w", path, l.Hemi, ErrLabelFormat)
	}
	if l.Values != nil && len(l.Values) != len(l.Vertices) {
		return nil, fmt.Errorf("ReadLabel %s: %d values for %d vertices: %w",
			path, len(l.Values), len(l.Vertices), ErrLabelFormat)
	}
	sort.Ints(l.Vertices)

	return &l, nil
}

// WriteLabel stores a label as a YAML document.
func WriteLabel(path string, l *Label) error {
	raw, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("WriteLabel: %w", err)
	}
	if err = os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("WriteLabel: %w", err)
	}

	return nil
}
