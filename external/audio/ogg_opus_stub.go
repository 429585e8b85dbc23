//go:build !opus

package audio

import (
	internalaudio "github.com/miraihr/mirai/internal/audio"
)

func normalizeOggOpus(_ []byte) (*internalaudio.Normalized, error) {
	return nil, internalaudio.ErrUnsupportedFormat
}
