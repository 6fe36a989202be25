// Package curve implements the tone-curve mapping that a view can apply
// ahead of the display transform.
//
// A Mapping is owned by the caller. Its identity (pointer) and its revision
// counter are what display-buffer caches compare to decide whether a cached
// result is still valid, so every edit must be followed by Changed.
package curve

import (
	"slices"
	"sync/atomic"
)

// Point is a curve control point.
type Point struct {
	X, Y float32
}

// Curve is a piecewise-linear curve through control points sorted by X.
type Curve struct {
	Points []Point

	// Extrapolate extends the first and last segments linearly instead of
	// holding the end values.
	Extrapolate bool
}

// Identity returns the diagonal curve through (0,0) and (1,1).
func Identity() Curve {
	return Curve{Points: []Point{{0, 0}, {1, 1}}}
}

// Evaluate returns the curve value at v.
func (c *Curve) Evaluate(v float32) float32 {
	pts := c.Points
	switch len(pts) {
	case 0:
		return v
	case 1:
		return pts[0].Y
	}

	first, last := pts[0], pts[len(pts)-1]
	if v <= first.X {
		if c.Extrapolate {
			return lerpSegment(pts[0], pts[1], v)
		}
		return first.Y
	}
	if v >= last.X {
		if c.Extrapolate {
			return lerpSegment(pts[len(pts)-2], last, v)
		}
		return last.Y
	}

	i, _ := slices.BinarySearchFunc(pts, v, func(p Point, x float32) int {
		switch {
		case p.X < x:
			return -1
		case p.X > x:
			return 1
		}
		return 0
	})
	if pts[i].X == v {
		return pts[i].Y
	}
	return lerpSegment(pts[i-1], pts[i], v)
}

func lerpSegment(a, b Point, v float32) float32 {
	dx := b.X - a.X
	if dx == 0 {
		return b.Y
	}
	t := (v - a.X) / dx
	return a.Y + (b.Y-a.Y)*t
}

// Mapping is a set of curves applied to RGB pixels.
//
// Each channel passes through the black/white point remap, its own curve
// and then the combined curve.
type Mapping struct {
	// Curves holds the red, green and blue curves followed by the
	// combined curve.
	Curves [4]Curve

	Black, White [3]float32

	bwmul    [3]float32
	revision atomic.Uint64
}

// Combined is the index of the curve applied to all channels.
const Combined = 3

// NewMapping returns an identity mapping.
func NewMapping() *Mapping {
	m := &Mapping{
		White: [3]float32{1, 1, 1},
	}
	for i := range m.Curves {
		m.Curves[i] = Identity()
	}
	m.update()
	return m
}

// Changed must be called after editing curves or black/white points.
// It sorts control points and bumps the revision.
func (m *Mapping) Changed() {
	m.update()
	m.revision.Add(1)
}

// Revision reports how many times the mapping has been changed.
func (m *Mapping) Revision() uint64 {
	return m.revision.Load()
}

func (m *Mapping) update() {
	for i := range m.Curves {
		slices.SortStableFunc(m.Curves[i].Points, func(a, b Point) int {
			switch {
			case a.X < b.X:
				return -1
			case a.X > b.X:
				return 1
			}
			return 0
		})
	}
	for i := range 3 {
		delta := m.White[i] - m.Black[i]
		if delta != 0 {
			m.bwmul[i] = 1 / delta
		} else {
			m.bwmul[i] = 0
		}
	}
}

// Copy returns a deep copy with the same revision.
func (m *Mapping) Copy() *Mapping {
	c := &Mapping{
		Black: m.Black,
		White: m.White,
		bwmul: m.bwmul,
	}
	for i := range m.Curves {
		c.Curves[i] = Curve{
			Points:      slices.Clone(m.Curves[i].Points),
			Extrapolate: m.Curves[i].Extrapolate,
		}
	}
	c.revision.Store(m.revision.Load())
	return c
}

// EvaluateF evaluates the single curve at index ch.
func (m *Mapping) EvaluateF(ch int, v float32) float32 {
	return m.Curves[ch].Evaluate(v)
}

// EvaluatePremulRGB maps the first three components of src into dst.
// dst and src may alias.
func (m *Mapping) EvaluatePremulRGB(dst, src []float32) {
	for i := range 3 {
		v := (src[i] - m.Black[i]) * m.bwmul[i]
		v = m.Curves[i].Evaluate(v)
		dst[i] = m.Curves[Combined].Evaluate(v)
	}
}

// ApplyPixel applies the mapping to a pixel with the given channel count.
// One and two channel pixels use the per-channel curves only.
func (m *Mapping) ApplyPixel(px []float32, channels int) {
	switch channels {
	case 1:
		px[0] = m.EvaluateF(0, px[0])
	case 2:
		px[0] = m.EvaluateF(0, px[0])
		px[1] = m.EvaluateF(1, px[1])
	default:
		m.EvaluatePremulRGB(px, px)
	}
}
