package colormanage

import (
	"image"
	"slices"

	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/imbuf"
	"github.com/gogpu/colormanage/internal/color"
	"github.com/gogpu/colormanage/internal/dispcache"
	"github.com/gogpu/colormanage/internal/parallel"
	"github.com/gogpu/colormanage/internal/processor"
)

// minThreadedArea is the smallest region a threaded partial update splits
// across the worker pool.
const minThreadedArea = 64 * 64

// PartialSource holds the changed pixels a partial update reads.
//
// Floats takes precedence over Bytes. Floats has the channel count of the
// target buffer and associated alpha. Bytes is 4-channel straight alpha in
// the byte color space of the target buffer.
type PartialSource struct {
	Floats []float32
	Bytes  []byte

	// Stride is the source row length in pixels. Zero means the buffer
	// width.
	Stride int

	// OffsetX and OffsetY are the buffer position of the first source
	// pixel.
	OffsetX, OffsetY int
}

// PartialUpdate refreshes rect of the display buffer cached for view and
// display from src.
//
// Only the buffer cached for this (view, display) pair is kept. Every other
// pair of buf is marked stale. If no valid display buffer is cached for the
// pair, every pair is marked stale and nothing is written.
//
// A display buffer still held by another caller is not modified: the update
// goes to a copy that replaces it in the cache.
func (m *Manager) PartialUpdate(buf *imbuf.Buffer, src PartialSource, view *ViewSettings, display DisplaySettings,
	rect image.Rectangle) {
	m.partialUpdate(m.session(), buf, src, view, display, rect, false)
}

// PartialUpdateThreaded is PartialUpdate splitting large regions by
// scanline across the worker pool.
func (m *Manager) PartialUpdateThreaded(buf *imbuf.Buffer, src PartialSource, view *ViewSettings, display DisplaySettings,
	rect image.Rectangle) {
	m.partialUpdate(m.session(), buf, src, view, display, rect, true)
}

// PartialUpdateDelayed records rect as changed. The next
// AcquireDisplayBuffer of buf refreshes it from the buffer pixels.
// It is safe to call while other goroutines acquire display buffers of buf.
func (m *Manager) PartialUpdateDelayed(buf *imbuf.Buffer, rect image.Rectangle) {
	buf.AddInvalidRect(rect)
}

// partialJob writes source pixels into a cached display buffer.
type partialJob struct {
	src      PartialSource
	channels int

	display []byte
	width   int

	proc     *processor.Processor
	toLinear engine.Transform
	isData   bool
	dither   float32
}

func (m *Manager) partialUpdate(s *session, buf *imbuf.Buffer, src PartialSource, view *ViewSettings,
	display DisplaySettings, rect image.Rectangle, threaded bool) {
	if src.Floats == nil && src.Bytes == nil {
		return
	}
	rect = rect.Intersect(buf.Bounds())
	if rect.Empty() {
		return
	}
	if src.Stride == 0 {
		src.Stride = buf.Width
	}

	cat := s.cat
	if view == nil {
		view = defaultViewSettings(cat, display)
	}
	key, snap := cacheKey(cat, view, display, buf.Dither)

	m.cache.Lock()
	defer m.cache.Unlock()

	st := m.cache.State(buf, s.layout)
	if st == nil {
		return
	}
	var h *dispcache.Handle
	if !buf.DisplayInvalid() {
		h, _ = m.cache.Get(buf, s.layout, key, snap)
	}
	if h == nil {
		st.Flags().Clear()
		return
	}
	st.Flags().Only(key.Display, key.View)

	pixels := h.Value().Pixels
	if h.Shared() {
		pixels = slices.Clone(pixels)
		h.Release()
		h = m.cache.Put(buf, s.layout, key, snap, pixels)
	}
	defer h.Release()

	job := partialJob{
		src:      src,
		channels: buf.Channels,
		display:  pixels,
		width:    buf.Width,
		isData:   buf.Data,
		dither:   buf.Dither,
	}
	if src.Floats == nil {
		job.channels = 4
	}

	skip := src.Floats == nil && rectInDisplaySpace(cat, buf, view, display)
	if !skip {
		job.proc = processor.NewDisplay(cat, processorParams(view, display))
		defer job.proc.Release()
		if src.Floats == nil {
			job.toLinear = cat.ToSceneLinear(cat.ColorSpaceNamed(byteSpace(cat, buf)))
		}
	}

	if threaded && rect.Dx()*rect.Dy() >= minThreadedArea {
		parallel.ProcessScanlines(m.pool, rect.Dy(), func(line int) {
			y := rect.Min.Y + line
			job.run(image.Rect(rect.Min.X, y, rect.Max.X, y+1))
		})
		return
	}
	job.run(rect)
}

func (j *partialJob) sourceIndex(x, y int) int {
	return (y-j.src.OffsetY)*j.src.Stride + (x - j.src.OffsetX)
}

func (j *partialJob) run(r image.Rectangle) {
	w, h := r.Dx(), r.Dy()
	ch := j.channels

	var tmp []float32
	if j.dither != 0 {
		tmp = make([]float32, ch*w*h)
	}

	if j.proc == nil {
		j.copyBytes(r, tmp)
	} else {
		j.processPixels(r, tmp)
	}

	if tmp != nil {
		off := (r.Min.Y*j.width + r.Min.X) * 4
		color.ByteFromFloat(j.display[off:], tmp, ch, j.dither, true, w, h, j.width, w, r.Min.X, r.Min.Y)
	}
}

// copyBytes moves display-space bytes as they are, or into tmp as
// associated-alpha floats when dithering.
func (j *partialJob) copyBytes(r image.Rectangle, tmp []float32) {
	w := r.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := j.sourceIndex(r.Min.X, y) * 4
		if tmp != nil {
			ti := (y - r.Min.Y) * w * 4
			color.FloatFromByte(tmp[ti:], j.src.Bytes[si:], 4, w)
			continue
		}
		di := (y*j.width + r.Min.X) * 4
		copy(j.display[di:di+w*4], j.src.Bytes[si:si+w*4])
	}
	if tmp != nil {
		color.PremultiplyRect(tmp, 4, w*r.Dy())
	}
}

func (j *partialJob) processPixels(r image.Rectangle, tmp []float32) {
	w := r.Dx()
	ch := j.channels
	var px, straight [4]float32

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			si := j.sourceIndex(x, y)
			if j.src.Floats != nil {
				s := j.src.Floats[si*ch:]
				switch ch {
				case 4:
					copy(px[:], s[:4])
				case 3:
					copy(px[:3], s[:3])
					px[3] = 1
				default:
					px[0] = s[0]
				}
			} else {
				s := j.src.Bytes[si*4 : si*4+4]
				for c := range px {
					px[c] = color.U8ToF32(s[c])
				}
				if j.toLinear != nil {
					j.toLinear.ApplyRGB(px[:3])
				}
				color.StraightToPremul(px[:])
			}

			if !j.isData {
				j.proc.ApplyPixel(px[:], ch)
			}

			if tmp != nil {
				ti := ((y-r.Min.Y)*w + (x - r.Min.X)) * ch
				copy(tmp[ti:ti+ch], px[:ch])
				continue
			}

			d := j.display[(y*j.width+x)*4:]
			switch ch {
			case 4:
				color.PremulToStraight(straight[:], px[:])
				d[0] = color.F32ToU8(straight[0])
				d[1] = color.F32ToU8(straight[1])
				d[2] = color.F32ToU8(straight[2])
				d[3] = color.F32ToU8(straight[3])
			case 3:
				d[0] = color.F32ToU8(px[0])
				d[1] = color.F32ToU8(px[1])
				d[2] = color.F32ToU8(px[2])
				d[3] = 255
			default:
				v := color.F32ToU8(px[0])
				d[0], d[1], d[2], d[3] = v, v, v, v
			}
		}
	}
}
