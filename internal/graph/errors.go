package graph

import "errors"

var (
	// ErrFetchFailed covers network, status, decode and validation failures
	// while acquiring a model.
	ErrFetchFailed = errors.New("graph fetch failed")

	// ErrStaleResult marks a fetch that resolved after a newer subject was
	// requested.
	ErrStaleResult = errors.New("stale graph result")

	// ErrDegenerateGraph marks a model with zero nodes.
	ErrDegenerateGraph = errors.New("graph has no concepts")

	ErrDuplicateNode = errors.New("duplicate node id")
	ErrEmptyNodeID   = errors.New("empty node id")
)
