package colormanage

import (
	"image"

	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/imbuf"
	"github.com/gogpu/colormanage/internal/catalog"
	"github.com/gogpu/colormanage/internal/color"
	"github.com/gogpu/colormanage/internal/dispcache"
	"github.com/gogpu/colormanage/internal/parallel"
	"github.com/gogpu/colormanage/internal/processor"
)

// CacheHandle pins a display buffer returned by AcquireDisplayBuffer.
// Pass it to ReleaseDisplayBuffer once the pixels are no longer used.
type CacheHandle struct {
	h *dispcache.Handle
}

// AcquireDisplayBuffer returns buf rendered for display as 4-channel
// straight-alpha bytes.
//
// When the byte pixels of buf already are in the display color space and
// the view settings are the identity, the byte pixels themselves are
// returned with a nil handle. Otherwise the result comes from the display
// cache of buf, computed on a miss. Nil view settings mean the display
// defaults. A buffer without pixels, or with a channel count other than
// 1, 3 or 4, yields nil.
//
// The returned bytes stay valid until the handle is released.
func (m *Manager) AcquireDisplayBuffer(buf *imbuf.Buffer, view *ViewSettings, display DisplaySettings) ([]byte, *CacheHandle) {
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return nil, nil
	}
	if buf.Bytes == nil && buf.Floats == nil {
		return nil, nil
	}
	if buf.Channels != 1 && buf.Channels != 3 && buf.Channels != 4 {
		return nil, nil
	}

	s := m.session()
	if view == nil {
		view = defaultViewSettings(s.cat, display)
	}

	if buf.Floats == nil && buf.ByteSpace != "" && buf.Channels == 4 &&
		rectInDisplaySpace(s.cat, buf, view, display) {
		return buf.Bytes, nil
	}

	if rect := buf.TakeInvalidRect(); !rect.Empty() && !buf.DisplayInvalid() {
		m.applyPending(s, buf, view, display, rect)
	}

	key, snap := cacheKey(s.cat, view, display, buf.Dither)

	m.cache.Lock()
	defer m.cache.Unlock()

	m.cache.EnsureState(buf, s.layout)
	if buf.TakeDisplayInvalid() {
		m.cache.InvalidateAll(buf)
	}

	if h, ok := m.cache.Get(buf, s.layout, key, snap); ok {
		return h.Value().Pixels, &CacheHandle{h: h}
	}

	pixels := make([]byte, 4*buf.Pixels())
	m.processDisplayBuffer(s.cat, buf, pixels, nil, view, display)
	h := m.cache.Put(buf, s.layout, key, snap, pixels)
	return pixels, &CacheHandle{h: h}
}

// applyPending refreshes rect, recorded by PartialUpdateDelayed, from the
// buffer pixels. 1- and 3-channel byte pixels have no partial path, so
// their display buffers are recomputed in full instead.
func (m *Manager) applyPending(s *session, buf *imbuf.Buffer, view *ViewSettings, display DisplaySettings,
	rect image.Rectangle) {
	src := PartialSource{Floats: buf.Floats, Stride: buf.Width}
	if buf.Floats == nil {
		if buf.Channels != 4 {
			m.InvalidateDisplayBuffers(buf)
			return
		}
		src.Bytes = buf.Bytes
	}
	m.partialUpdate(s, buf, src, view, display, rect, true)
}

// ReleaseDisplayBuffer unpins a display buffer. A nil handle is ignored.
func (m *Manager) ReleaseDisplayBuffer(h *CacheHandle) {
	if h == nil {
		return
	}
	m.cache.Release(h.h)
}

// InvalidateDisplayBuffers marks every cached display buffer of buf stale.
func (m *Manager) InvalidateDisplayBuffers(buf *imbuf.Buffer) {
	m.cache.Lock()
	m.cache.InvalidateAll(buf)
	m.cache.Unlock()
}

// FreeCache drops the display cache attached to buf.
func (m *Manager) FreeCache(buf *imbuf.Buffer) {
	m.cache.Free(buf)
}

// rectInDisplaySpace reports whether the byte pixels of buf can be shown
// as they are.
func rectInDisplaySpace(cat *catalog.Catalog, buf *imbuf.Buffer, view *ViewSettings, display DisplaySettings) bool {
	if view.Flags&UseCurveMapping != 0 {
		return false
	}
	if view.Exposure != 0 || view.Gamma != 1 {
		return false
	}
	if l := cat.LookNamed(view.Look); l != nil && l.ProcessSpace != "" {
		return false
	}
	if buf.ByteSpace == "" {
		return false
	}
	return buf.ByteSpace == cat.DisplayColorSpaceName(view.ViewTransform, display.DisplayDevice)
}

// byteSpace returns the color space of the byte pixels of buf.
func byteSpace(cat *catalog.Catalog, buf *imbuf.Buffer) string {
	if buf.ByteSpace != "" {
		return buf.ByteSpace
	}
	return cat.Role(engine.RoleDefaultByte)
}

// processDisplayBuffer renders buf for display into dstBytes (4 channels)
// and dstFloats (buf.Channels), either of which may be nil.
func (m *Manager) processDisplayBuffer(cat *catalog.Catalog, buf *imbuf.Buffer, dstBytes []byte, dstFloats []float32,
	view *ViewSettings, display DisplaySettings) {
	var proc *processor.Processor
	skip := buf.Floats == nil && buf.ByteSpace != "" && rectInDisplaySpace(cat, buf, view, display)
	if !skip {
		proc = processor.NewDisplay(cat, processorParams(view, display))
		defer proc.Release()
	}
	m.applyDisplay(cat, buf, proc, dstBytes, dstFloats)
}

// displayJob is one row range of a display conversion.
type displayJob struct {
	buf      *imbuf.Buffer
	proc     *processor.Processor
	toLinear *processor.Processor

	dstBytes  []byte
	dstFloats []float32

	predivide bool
	start     int
	rows      int
}

func (m *Manager) applyDisplay(cat *catalog.Catalog, buf *imbuf.Buffer, proc *processor.Processor,
	dstBytes []byte, dstFloats []float32) {
	var toLinear *processor.Processor
	if proc != nil && !buf.Data && !proc.IsDataResult() {
		sceneLinear := cat.Role(engine.RoleSceneLinear)
		switch {
		case buf.Floats == nil:
			if from := byteSpace(cat, buf); from != "" && from != sceneLinear {
				toLinear = processor.NewColorSpace(cat, from, sceneLinear)
			}
		case buf.FloatSpace != "" && buf.FloatSpace != sceneLinear:
			toLinear = processor.NewColorSpace(cat, buf.FloatSpace, sceneLinear)
		}
	}
	if toLinear != nil {
		defer toLinear.Release()
	}

	parallel.ProcessRows(m.pool, buf.Height,
		func(start, count int) displayJob {
			return displayJob{
				buf:       buf,
				proc:      proc,
				toLinear:  toLinear,
				dstBytes:  dstBytes,
				dstFloats: dstFloats,
				predivide: buf.AlphaAffectsRGB(),
				start:     start,
				rows:      count,
			}
		},
		func(j displayJob) { j.run() })
}

func (j *displayJob) run() {
	buf := j.buf
	w, ch := buf.Width, buf.Channels
	n := w * j.rows
	srcOff := j.start * w * ch
	dstOff := j.start * w * 4

	if j.proc == nil {
		if j.dstBytes != nil && !sameBacking(j.dstBytes, buf.Bytes) {
			color.ByteFromByte(j.dstBytes[dstOff:], buf.Bytes[srcOff:], ch, n)
		}
		if j.dstFloats != nil {
			color.FloatFromByte(j.dstFloats[srcOff:], buf.Bytes[srcOff:], ch, n)
		}
		return
	}

	linear := make([]float32, n*ch)
	straight := false
	if buf.Floats == nil {
		color.FloatFromByte(linear, buf.Bytes[srcOff:], ch, n)
		if j.toLinear != nil {
			j.toLinear.Apply(linear, w, j.rows, ch, false)
		}
		straight = true
	} else {
		copy(linear, buf.Floats[srcOff:srcOff+n*ch])
		if j.toLinear != nil {
			j.toLinear.Apply(linear, w, j.rows, ch, j.predivide)
		}
	}

	predivide := j.predivide && !straight
	if !buf.Data {
		j.proc.Apply(linear, w, j.rows, ch, predivide)
	}

	if j.dstBytes != nil {
		color.ByteFromFloat(j.dstBytes[dstOff:], linear, ch, buf.Dither, predivide, w, j.rows, w, w, 0, j.start)
	}
	if j.dstFloats != nil {
		copy(j.dstFloats[srcOff:], linear)
		if straight {
			color.PremultiplyRect(j.dstFloats[srcOff:], ch, n)
		}
	}
}

// sameBacking reports whether a and b start at the same element.
func sameBacking(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
