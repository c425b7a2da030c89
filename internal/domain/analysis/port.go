package analysis

import "context"

// Analyzer is the external generative capability. It returns the raw reply
// text, which is untrusted until passed through Validate.
type Analyzer interface {
	Generate(ctx context.Context, req Request) (string, error)
}
