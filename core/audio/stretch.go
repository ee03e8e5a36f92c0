package audio

import "math"

// Stretch time-stretches samples by the given speed ratio without shifting
// pitch, using windowed overlap-add. A ratio above 1 shortens the output
// (faster playback), below 1 lengthens it. Ratio 1 returns the input
// untouched.
//
// The window is 10ms at the given sample rate with 50% synthesis overlap,
// short enough to stretch individual playback frames. Inputs shorter than one
// window are returned as-is since there is nothing to overlap.
func Stretch(samples []float32, sampleRate int, ratio float64) []float32 {
	if ratio <= 0 || ratio == 1 || sampleRate <= 0 {
		return samples
	}

	window := sampleRate / 100
	if len(samples) <= window {
		return samples
	}

	synthesisHop := window / 2
	analysisHop := int(float64(synthesisHop) * ratio)
	if analysisHop < 1 {
		analysisHop = 1
	}

	outLen := int(float64(len(samples)) / ratio)
	out := make([]float32, outLen+window)
	weight := make([]float32, outLen+window)

	hann := make([]float32, window)
	for i := range hann {
		hann[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(window-1))))
	}

	synthPos := 0
	for analysisPos := 0; analysisPos+window <= len(samples); analysisPos += analysisHop {
		for i := 0; i < window && synthPos+i < len(out); i++ {
			out[synthPos+i] += samples[analysisPos+i] * hann[i]
			weight[synthPos+i] += hann[i]
		}
		synthPos += synthesisHop
		if synthPos >= outLen {
			break
		}
	}

	for i := range out[:outLen] {
		if weight[i] > 1e-6 {
			out[i] /= weight[i]
		}
	}

	return out[:outLen]
}
