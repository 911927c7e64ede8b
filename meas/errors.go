// SPDX-License-Identifier: MIT
// Package meas: sentinel error set.

package meas

import "errors"

var (
	// ErrUnknownChannel indicates a channel name not present in the Info.
	ErrUnknownChannel = errors.New("meas: unknown channel name")

	// ErrEmptySelection indicates a channel selection that matched nothing.
	ErrEmptySelection = errors.New("meas: channel selection is empty")

	// ErrShapeMismatch indicates data whose row count disagrees with the
	// channel list.
	ErrShapeMismatch = errors.New("meas: data shape disagrees with channel count")
)
