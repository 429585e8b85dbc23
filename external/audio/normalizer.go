package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/miraihr/mirai/internal/audio"
)

const (
	targetSampleRate = 16000
	targetChannels   = 1
)

// PCMNormalizer converts uploaded recordings (RIFF/WAVE or Ogg/Opus) to
// 16 kHz mono PCM16 so they can be fed to recognizers with a fixed decoding
// config and so upload duration limits can be enforced.
type PCMNormalizer struct{}

func NewPCMNormalizer() audio.Normalizer {
	return &PCMNormalizer{}
}

func (n *PCMNormalizer) Normalize(data []byte) (*audio.Normalized, error) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return normalizeWAV(data)
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")):
		return normalizeOggOpus(data)
	default:
		return nil, audio.ErrUnsupportedFormat
	}
}

func normalizeWAV(data []byte) (*audio.Normalized, error) {
	format, err := parseWAV(data)
	if err != nil {
		return nil, err
	}
	mono := downmix(format.samples, format.channels)
	resampled := resample(mono, format.sampleRate)
	return finishNormalized(resampled), nil
}

type wavData struct {
	sampleRate int
	channels   int
	samples    []int16
}

func parseWAV(data []byte) (*wavData, error) {
	out := &wavData{}
	pos := 12
	var pcm []byte
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("wav: fmt chunk too short: %w", audio.ErrUnsupportedFormat)
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			out.channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			out.sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if audioFormat != 1 || bits != 16 {
				return nil, fmt.Errorf("wav: only PCM16 is supported: %w", audio.ErrUnsupportedFormat)
			}
		case "data":
			pcm = data[body : body+size]
		}
		// Chunks are word-aligned.
		pos = body + size + size%2
	}
	if out.sampleRate == 0 || out.channels == 0 || pcm == nil {
		return nil, fmt.Errorf("wav: missing fmt or data chunk: %w", audio.ErrUnsupportedFormat)
	}
	out.samples = make([]int16, len(pcm)/2)
	for i := range out.samples {
		out.samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out, nil
}

func downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	mono := make([]int16, len(samples)/channels)
	for i := range mono {
		var sum int32
		for c := 0; c < channels; c++ {
			sum += int32(samples[i*channels+c])
		}
		mono[i] = int16(sum / int32(channels))
	}
	return mono
}

// resample converts mono PCM to the target rate by linear interpolation.
// Speech recognition does not need a band-limited resampler.
func resample(samples []int16, from int) []int16 {
	if from == targetSampleRate || len(samples) == 0 {
		return samples
	}
	n := int(int64(len(samples)) * targetSampleRate / int64(from))
	out := make([]int16, n)
	for i := range out {
		pos := float64(i) * float64(from) / float64(targetSampleRate)
		j := int(pos)
		frac := pos - float64(j)
		a := samples[j]
		b := a
		if j+1 < len(samples) {
			b = samples[j+1]
		}
		out[i] = int16(float64(a)*(1-frac) + float64(b)*frac)
	}
	return out
}

func finishNormalized(samples []int16) *audio.Normalized {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return &audio.Normalized{
		PCM:      pcm,
		WAV:      encodeWAV(pcm),
		Duration: time.Duration(len(samples)) * time.Second / targetSampleRate,
	}
}

func encodeWAV(pcm []byte) []byte {
	var buf bytes.Buffer
	byteRate := targetSampleRate * targetChannels * 2
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(targetChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(targetSampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(targetChannels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
