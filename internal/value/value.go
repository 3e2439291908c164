// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package value provides zero-sized type (ZST) detection for a generic
// type parameter at runtime.
//
// Dims is meant to be a zero-sized type (BlockDim/LevelCount are fixed by
// the concrete type, e.g. Dims2x3, not by any field value) so that
// instantiating Tree[D] carries no per-instance cost beyond the storage
// itself. RequireZST is a safety net against a Dims implementation that
// accidentally carries a field: a non-ZST Dims still compiles and runs
// correctly, but silently defeats the "zero-sized type parameter" design
// this package's storage layout depends on, so New panics immediately
// instead of leaving the mistake to be found later as a leaked field.
package value

// IsZST reports whether type V is a zero-sized type (ZST).
//
// Zero-sized types such as struct{}, [0]byte, or structs/arrays with no fields
// occupy no memory. The Go runtime optimizes allocations of ZSTs by returning
// pointers to the same memory address (typically runtime.zerobase).
//
// This function exploits that optimization: it allocates two instances of V
// and compares their addresses. If the addresses are equal, V must be a ZST,
// since distinct non-zero-sized allocations would have different addresses.
//
// The helper escapeToHeap ensures both allocations reach the heap and prevents
// the compiler from proving address equality at compile time, which would
// invalidate the runtime check.
func IsZST[V any]() bool {
	a, b := escapeToHeap[V]()
	return a == b
}

// escapeToHeap forces two allocations of type V to escape to the heap.
//
// The go:noinline directive is critical: it prevents the compiler from inlining
// this function and optimizing away the allocations or proving that a == b at
// compile time. Without it, the compiler could elide one allocation or determine
// the result statically, breaking the ZST detection heuristic.
//
//go:noinline
func escapeToHeap[V any]() (*V, *V) {
	return new(V), new(V)
}

// RequireZST panics if V is not a zero-sized type. name is included in the
// panic message to identify which type parameter failed the check.
func RequireZST[V any](name string) {
	if !IsZST[V]() {
		panic(name + " must be a zero-sized type")
	}
}
