// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package pool implements a fixed-capacity slot allocator.
//
// A [Pool] allocates all of its storage up front and hands out slots by
// [Handle], an index with a generation counter, rather than by pointer. This
// is the basis for every other dynamic structure in go-flow, so that nothing
// on the data path allocates once a system has been constructed.
//
// Acquire and Release are O(1). Acquire fails with [ErrExhausted] at the
// capacity ceiling, and releasing a slot that is not held returns
// [ErrDoubleRelease], which surfaces double-free bugs during host testing.
package pool
