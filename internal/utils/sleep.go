package utils

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// sampleGamma returns a sample from the Gamma(shape, scale) distribution using
// the Marsaglia-Tsang squeeze method. shape must be >= 1.
func sampleGamma(shape, scale float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rand.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		x2 := x * x
		u := rand.Float64()
		if u < 1.0-0.0331*(x2*x2) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Sleep pauses for a duration drawn from a Gamma(4, 0.25) distribution centred
// on the requested millisecond value. Synthetic input with perfectly regular
// timing is trivially distinguishable from a human; the right-skewed jitter is
// clamped to [0.4, 2.5] to avoid pathological extremes. Sleep(0) returns
// immediately so tests can inject zero delays.
func Sleep(milliseconds int) {
	if milliseconds <= 0 {
		return
	}
	const shape = 4.0
	const scale = 0.25 // mean = shape*scale = 1.0
	multiplier := sampleGamma(shape, scale)
	if multiplier < 0.4 {
		multiplier = 0.4
	}
	if multiplier > 2.5 {
		multiplier = 2.5
	}
	time.Sleep(time.Duration(float64(milliseconds)*multiplier) * time.Millisecond)
}

// SleepCtx waits for d or until ctx is done, whichever comes first. Used for
// the long supervisor idles (WAIT, ERROR_PAUSE) so shutdown is not held
// hostage by a multi-minute pause.
func SleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
