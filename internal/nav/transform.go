package nav

import (
	"math"

	"github.com/lrivero/muvisor/internal/data"
)

// ScreenVector is a pixel offset from the window center in isometric screen
// space. Always transient; derived from a world delta and consumed by a
// click, never stored.
type ScreenVector struct {
	DX int
	DY int
}

func (v ScreenVector) Magnitude() float64 {
	return math.Hypot(float64(v.DX), float64(v.DY))
}

// Transform maps a world-grid delta to a screen pixel delta under the 2:1
// isometric projection: game +X runs down-right on screen, game +Y down-left.
//
//	screenDX = (dx + dy) * pixelsPerUnit
//	screenDY = (dx - dy) * pixelsPerUnit
func Transform(delta data.Position, pixelsPerUnit float64) ScreenVector {
	return ScreenVector{
		DX: int(math.Round(float64(delta.X+delta.Y) * pixelsPerUnit)),
		DY: int(math.Round(float64(delta.X-delta.Y) * pixelsPerUnit)),
	}
}

// InverseTransform recovers the world delta from a screen vector. Exact for
// integer deltas at pixelsPerUnit 1, approximate otherwise.
func InverseTransform(v ScreenVector, pixelsPerUnit float64) data.Position {
	sx := float64(v.DX) / pixelsPerUnit
	sy := float64(v.DY) / pixelsPerUnit
	return data.Position{
		X: int(math.Round((sx + sy) / 2)),
		Y: int(math.Round((sx - sy) / 2)),
	}
}

// SplitClicks turns a world delta into a sequence of screen clicks, each
// capped at maxRadius pixels. The client does not reliably path a single
// long click, so long moves are walked in capped hops. The vector sum of the
// returned clicks equals the transformed delta exactly; per-click rounding
// is telescoped away by computing cumulative waypoints.
func SplitClicks(delta data.Position, pixelsPerUnit float64, maxRadius int) []ScreenVector {
	full := Transform(delta, pixelsPerUnit)
	mag := full.Magnitude()
	if mag == 0 || maxRadius <= 0 {
		return nil
	}

	n := int(math.Ceil(mag / float64(maxRadius)))
	clicks := make([]ScreenVector, 0, n)
	prevX, prevY := 0, 0
	for i := 1; i <= n; i++ {
		cumX := int(math.Round(float64(full.DX) * float64(i) / float64(n)))
		cumY := int(math.Round(float64(full.DY) * float64(i) / float64(n)))
		clicks = append(clicks, ScreenVector{DX: cumX - prevX, DY: cumY - prevY})
		prevX, prevY = cumX, cumY
	}
	return clicks
}
