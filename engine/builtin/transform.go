package builtin

import (
	"sync/atomic"

	"github.com/gogpu/colormanage/engine"
)

// op mutates one RGB triple.
type op func(p *[3]float32)

// pipeline is the engine.Transform produced by the built-in engine: a
// fixed sequence of per-pixel operations.
type pipeline struct {
	ops  []op
	refs atomic.Int32
}

var _ engine.Transform = (*pipeline)(nil)

func newPipeline(ops []op) *pipeline {
	p := &pipeline{ops: ops}
	p.refs.Store(1)
	return p
}

// IsIdentity reports whether the pipeline has no operations.
func (p *pipeline) IsIdentity() bool { return len(p.ops) == 0 }

func (p *pipeline) run(px []float32) {
	if len(p.ops) == 0 {
		return
	}
	v := [3]float32{px[0], px[1], px[2]}
	for _, o := range p.ops {
		o(&v)
	}
	px[0], px[1], px[2] = v[0], v[1], v[2]
}

func (p *pipeline) runPredivide(px []float32) {
	a := px[3]
	if a == 1 {
		p.run(px)
		return
	}
	if a != 0 {
		inv := 1 / a
		px[0] *= inv
		px[1] *= inv
		px[2] *= inv
	}
	p.run(px)
	px[0] *= a
	px[1] *= a
	px[2] *= a
}

func (p *pipeline) ApplyRGB(px []float32)           { p.run(px) }
func (p *pipeline) ApplyRGBA(px []float32)          { p.run(px) }
func (p *pipeline) ApplyRGBAPredivide(px []float32) { p.runPredivide(px) }

func (p *pipeline) Apply(img engine.PackedImage) {
	p.apply(img, false)
}

func (p *pipeline) ApplyPredivide(img engine.PackedImage) {
	p.apply(img, true)
}

func (p *pipeline) apply(img engine.PackedImage, predivide bool) {
	ch := img.Channels
	if ch < 3 || len(p.ops) == 0 {
		return
	}
	n := img.Width * img.Height
	data := img.Data
	for i := range n {
		px := data[i*ch : i*ch+ch]
		if predivide && ch == 4 {
			p.runPredivide(px)
		} else {
			p.run(px)
		}
	}
}

func (p *pipeline) Retain() { p.refs.Add(1) }

func (p *pipeline) Release() {
	if p.refs.Add(-1) == 0 {
		p.ops = nil
	}
}
