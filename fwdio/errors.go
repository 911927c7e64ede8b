// SPDX-License-Identifier: MIT

package fwdio

import "errors"

var (
	// ErrExists indicates the destination file exists and Overwrite was not
	// requested.
	ErrExists = errors.New("fwdio: destination exists; pass Overwrite(true) to replace it")

	// ErrFormat indicates a container that is not a forward-solution file or
	// is truncated/corrupt.
	ErrFormat = errors.New("fwdio: not a forward-solution container")

	// ErrNilSolution indicates a nil solution passed to a writer.
	ErrNilSolution = errors.New("fwdio: nil solution")
)
