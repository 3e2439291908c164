// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package svt

import "errors"

// ErrBadFormat is returned when a serialized buffer or RSVO file does not
// match the expected shape for the tree's compile-time Dims.
var ErrBadFormat = errors.New("svt: bad format")
