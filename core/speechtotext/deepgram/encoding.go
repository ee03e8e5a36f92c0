package deepgram

import (
	"fmt"

	"github.com/ferrostad/voxa-core/core/audio"
)

type encodingFormat string

func (e encodingFormat) Name() string { return string(e) }

const (
	encodingLinear16 encodingFormat = "linear16"
	encodingALaw     encodingFormat = "alaw"
	encodingMulaw    encodingFormat = "mulaw"
)

// sessionEncoding is the encoding negotiated for one live session, expressed
// in the provider's query-parameter vocabulary.
type sessionEncoding struct {
	SampleRate int
	Format     encodingFormat
}

var supportedRates = map[int]bool{
	8000:  true,
	16000: true,
	24000: true,
	32000: true,
	48000: true,
}

// resolveEncoding maps local encoding info onto the provider's supported
// combinations. Companded formats are only accepted at 8 kHz.
func resolveEncoding(encoding audio.EncodingInfo) (sessionEncoding, error) {
	if !supportedRates[encoding.SampleRate] {
		return sessionEncoding{}, fmt.Errorf("unsupported sample rate %d", encoding.SampleRate)
	}

	var format encodingFormat
	switch encoding.Format {
	case audio.EncodingLinear16:
		format = encodingLinear16
	case audio.EncodingALaw:
		format = encodingALaw
	case audio.EncodingMulaw:
		format = encodingMulaw
	default:
		return sessionEncoding{}, fmt.Errorf("unsupported encoding %q", encoding.Format)
	}

	if format != encodingLinear16 && encoding.SampleRate != 8000 {
		return sessionEncoding{}, fmt.Errorf("%s encoding requires an 8 kHz sample rate", format)
	}

	return sessionEncoding{SampleRate: encoding.SampleRate, Format: format}, nil
}
