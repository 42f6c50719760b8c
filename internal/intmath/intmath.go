// Copyright 2017 The go-ethereum Authors
// (original work)
// Copyright 2024 The sonlib-go Authors
// (modifications)
// This file is part of sonlib-go.
//
// sonlib-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sonlib-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sonlib-go. If not, see <http://www.gnu.org/licenses/>.

// Package intmath is the overflow-checked integer arithmetic the KV
// backends use for byte-offset and threshold bookkeeping: bigrecord's
// partial-read range check and ktcache's bulk-write byte accounting both
// add caller-supplied sizes together, and an adversarial or simply huge
// size shouldn't be able to wrap the accumulator past a limit undetected.
package intmath

import "math/bits"

// SafeAdd returns x+y and reports whether the addition overflowed uint64.
func SafeAdd(x, y uint64) (sum uint64, overflow bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}
