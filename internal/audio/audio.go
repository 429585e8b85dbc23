package audio

import (
	"errors"
	"time"
)

// ErrUnsupportedFormat is returned for uploads the normalizer cannot parse.
// Callers that only need a duration estimate may treat it as non-fatal.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Normalized is an upload converted to 16 kHz mono signed 16-bit PCM.
type Normalized struct {
	// PCM is raw little-endian PCM16 at 16 kHz mono.
	PCM []byte
	// WAV is the same samples wrapped in a RIFF/WAVE container.
	WAV      []byte
	Duration time.Duration
}

type Normalizer interface {
	Normalize(data []byte) (*Normalized, error)
}
