// Package config holds the default tree-shape and denomination constants
// shared by the CLI drivers. Library callers are free to pick their own
// height/capHeight/depth instead of these defaults.
package config

const (
	// DefaultHeight is the Semaphore-variant access set's default total
	// tree height (2^20 leaves), matching the scale the source this module
	// generalizes from exercises in its own end-to-end test.
	DefaultHeight = 20

	// DefaultCapHeight is the default number of uncollapsed top levels; 0
	// means a single-entry cap (the classic "one root" configuration),
	// still fully supported by the general cap-entry multiplexer.
	DefaultCapHeight = 0

	// TornadoDepth is the Tornado-variant deposit tree's fixed depth.
	TornadoDepth = 20

	// TornadoDenomination is the fixed deposit amount (in the smallest
	// on-chain unit) every leaf of a Tornado deposit tree represents.
	// Restored from the source this module's Tornado variant is based on;
	// the core itself treats denomination only as a topic tag, not a value
	// it moves.
	TornadoDenomination = 1_000_000_000

	// DemoHeight and DemoCapHeight size the access set cmd/export builds for
	// a single-proof fixture demo; DefaultHeight's 2^20 leaves would make a
	// throwaway CLI demo compile and prove far longer than the fixture it
	// produces is worth.
	DemoHeight    = 4
	DemoCapHeight = 1
	DemoDepth     = 4
)
