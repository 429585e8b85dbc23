//go:build opus

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hraban/opus"
	"github.com/pion/webrtc/v3/pkg/media/oggreader"

	internalaudio "github.com/miraihr/mirai/internal/audio"
)

// Opus frames are at most 120 ms long: 1920 samples per channel at 16 kHz.
const maxOpusFrameSamples = 1920

func normalizeOggOpus(data []byte) (*internalaudio.Normalized, error) {
	reader, _, err := oggreader.NewWith(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ogg: %w", internalaudio.ErrUnsupportedFormat)
	}
	dec, err := opus.NewDecoder(targetSampleRate, targetChannels)
	if err != nil {
		return nil, fmt.Errorf("opus decoder: %w", err)
	}

	var samples []int16
	frame := make([]int16, maxOpusFrameSamples*targetChannels)
	for {
		payload, _, err := reader.ParseNextPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ogg page: %w", err)
		}
		if bytes.HasPrefix(payload, []byte("OpusTags")) {
			continue
		}
		n, err := dec.Decode(payload, frame)
		if err != nil {
			// Pages that carry more than one laced packet fail to decode as a
			// single packet; skip them instead of aborting the whole clip.
			continue
		}
		samples = append(samples, frame[:n*targetChannels]...)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("ogg: no decodable opus packets: %w", internalaudio.ErrUnsupportedFormat)
	}
	return finishNormalized(samples), nil
}
