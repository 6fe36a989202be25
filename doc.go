// Package colormanage converts image buffers between scene-linear, storage
// and display color spaces and caches the display-ready result per buffer.
//
// # Overview
//
// A Manager owns everything process-wide: the catalog of color spaces,
// displays, views and looks loaded from an engine config, the transform
// engine, a worker pool and the memory budget shared by all display buffer
// caches.
//
//	m := colormanage.New()
//	defer m.Close()
//
//	buf := imbuf.FromImage(img)
//	buf.ByteSpace = "sRGB"
//
//	view := m.DefaultViewSettings(colormanage.DisplaySettings{DisplayDevice: "sRGB"})
//	view.Exposure = 1
//	pixels, h := m.AcquireDisplayBuffer(buf, view, colormanage.DisplaySettings{DisplayDevice: "sRGB"})
//	defer m.ReleaseDisplayBuffer(h)
//
// AcquireDisplayBuffer returns 4-channel straight-alpha bytes. The result is
// cached per (view, display) pair and reused until any setting that affects
// it changes: look, exposure, gamma, view flags, the curve mapping or the
// buffer's dither amount.
//
// # Partial updates
//
// Interactive tools that change a region of a buffer call PartialUpdate (or
// PartialUpdateThreaded) to refresh only that region of the currently shown
// display buffer. Every other cached (view, display) pair of the buffer is
// invalidated. PartialUpdateDelayed records the region instead, and the next
// AcquireDisplayBuffer applies it.
//
// # Configuration
//
// Without options, New loads the built-in engine config named by the
// COLORMANAGE_CONFIG environment variable, or the compiled-in default. A
// config without displays or views is replaced by a minimal fallback, so a
// Manager always has at least one display and one view.
//
// # Thread Safety
//
// All Manager methods are safe for concurrent use except Reload and Close,
// which must not run concurrently with other calls. Buffers may be shared
// between goroutines; pixel writes racing with display updates of the same
// buffer are the caller's responsibility.
package colormanage
