package audio

import (
	"math"
	"testing"
)

func sine(n, sampleRate int, freq float64) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return samples
}

func TestStretchIdentityAtUnitRatio(t *testing.T) {
	in := sine(4800, 24000, 440)

	out := Stretch(in, 24000, 1)
	if len(out) != len(in) {
		t.Fatalf("expected unchanged length %d, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("expected untouched samples at ratio 1, sample %d differs", i)
		}
	}
}

func TestStretchHalvesLengthAtDoubleSpeed(t *testing.T) {
	in := sine(24000, 24000, 440)

	out := Stretch(in, 24000, 2)
	if got, want := len(out), len(in)/2; got != want {
		t.Fatalf("expected output length %d at double speed, got %d", want, got)
	}
}

func TestStretchDoublesLengthAtHalfSpeed(t *testing.T) {
	in := sine(24000, 24000, 440)

	out := Stretch(in, 24000, 0.5)
	if got, want := len(out), len(in)*2; got != want {
		t.Fatalf("expected output length %d at half speed, got %d", want, got)
	}
}

func TestStretchKeepsOutputBounded(t *testing.T) {
	in := sine(24000, 24000, 440)

	for _, ratio := range []float64{0.5, 1.5, 2, 3} {
		for i, s := range Stretch(in, 24000, ratio) {
			if s > 1.01 || s < -1.01 {
				t.Fatalf("ratio %f produced out-of-range sample %f at %d", ratio, s, i)
			}
		}
	}
}

func TestStretchShortInputPassesThrough(t *testing.T) {
	in := sine(100, 24000, 440)

	out := Stretch(in, 24000, 2)
	if len(out) != len(in) {
		t.Fatalf("expected sub-window input to pass through, got length %d", len(out))
	}
}
