package speech

import "context"

// Synthesizer renders reply text as playable audio (MP3).
type Synthesizer interface {
	// Name is the provider identifier used in metrics and logs.
	Name() string
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
