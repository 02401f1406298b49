// /internal/voice/encoder.go
package voice

import "layeh.com/gopus"

const (
	sampleRate = 48000
	channels   = 2
	frameSize  = 960 // 20ms at 48kHz
	maxBytes   = 4000
)

// opusEncoder wraps the gopus encoder at Discord's 48kHz stereo format.
type opusEncoder struct {
	enc *gopus.Encoder
}

func newOpusEncoder() (*opusEncoder, error) {
	enc, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return nil, err
	}
	return &opusEncoder{enc: enc}, nil
}

// Encode converts one frame of little-endian 16-bit PCM into an Opus packet.
func (e *opusEncoder) Encode(pcm []byte) ([]byte, error) {
	return e.enc.Encode(pcmToInt16(pcm), frameSize, maxBytes)
}

func pcmToInt16(b []byte) []int16 {
	samples := make([]int16, len(b)/2)
	for i := range samples {
		samples[i] = int16(b[2*i]) | int16(b[2*i+1])<<8
	}
	return samples
}
