// Package rbtree implements the balanced tree at the heart of rbstat: an
// ordered multiset of float64 values kept in a red-black tree.
//
// Nodes live in an arena (a growable slice) and reference each other by
// index, so the parent back-link never forms an ownership cycle. The tree
// has no internal locking; callers that share a Tree between goroutines
// must provide their own exclusion.
//
// A nil *Tree is a valid, empty tree for every query. Insert returns the
// handle to keep using, allocating one when called on nil.
package rbtree
