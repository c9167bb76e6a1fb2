package protocol

import "errors"

// Depth limits to prevent stack overflow via deeply nested input.
const (
	// MaxElementDepth limits the nesting depth of decoded element trees.
	MaxElementDepth = 256

	// MaxDiffDepth limits the nesting depth of decoded diff trees. Elements
	// carried inside a diff are limited separately by MaxElementDepth.
	MaxDiffDepth = 256
)

// ErrMaxDepthExceeded is returned when decoded input nests deeper than the
// decoder's limits.
var ErrMaxDepthExceeded = errors.New("protocol: maximum nesting depth exceeded")

// DepthLimits configures the depth limits of a Decoder.
type DepthLimits struct {
	ElementDepth int
	DiffDepth    int
}

// DefaultDepthLimits returns the default depth limits.
func DefaultDepthLimits() DepthLimits {
	return DepthLimits{
		ElementDepth: MaxElementDepth,
		DiffDepth:    MaxDiffDepth,
	}
}

// checkDepth fails once current passes max. The root is depth 0.
func checkDepth(current, max int) error {
	if current > max {
		return ErrMaxDepthExceeded
	}
	return nil
}
