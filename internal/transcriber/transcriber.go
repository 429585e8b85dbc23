package transcriber

import "context"

// Clip is one finished recording as uploaded by a client.
type Clip struct {
	Data        []byte
	Filename    string
	ContentType string
	Language    string
}

type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, clip Clip) (string, error)
}
