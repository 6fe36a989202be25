package colormanage

import (
	"log/slog"

	"github.com/gogpu/colormanage/curve"
	"github.com/gogpu/colormanage/internal/catalog"
	"github.com/gogpu/colormanage/internal/dispcache"
	"github.com/gogpu/colormanage/internal/processor"
)

// ViewFlags are view settings switches.
type ViewFlags uint32

const (
	// UseCurveMapping enables the Curve stage of ViewSettings.
	UseCurveMapping ViewFlags = 1 << iota
)

// DefaultView is the view preferred by DefaultViewSettings.
const DefaultView = "Standard"

// ViewSettings select how scene-linear pixels are rendered for display.
type ViewSettings struct {
	ViewTransform string
	Look          string

	// Exposure is in stops and applied in scene-linear space.
	Exposure float32

	// Gamma is applied to display-encoded values. 1 means none.
	Gamma float32

	Flags ViewFlags

	// Curve is used when Flags has UseCurveMapping. Cached display buffers
	// track its identity and revision, so call Changed after every edit.
	Curve *curve.Mapping
}

// DisplaySettings select the output device.
type DisplaySettings struct {
	DisplayDevice string
}

// DefaultDisplaySettings returns settings naming the catalog's default
// display.
func (m *Manager) DefaultDisplaySettings() DisplaySettings {
	var ds DisplaySettings
	if d := m.session().cat.DefaultDisplay(); d != nil {
		ds.DisplayDevice = d.Name
	}
	return ds
}

// DefaultViewSettings returns the view settings used when none are given:
// the "Standard" view if the display offers one, otherwise the display's
// default view, with no look, exposure or gamma.
func (m *Manager) DefaultViewSettings(display DisplaySettings) *ViewSettings {
	return defaultViewSettings(m.session().cat, display)
}

func defaultViewSettings(cat *catalog.Catalog, display DisplaySettings) *ViewSettings {
	vs := &ViewSettings{Look: catalog.NoneLook, Gamma: 1}
	d := cat.DisplayNamed(display.DisplayDevice)
	v := cat.ViewNamedForDisplay(d, DefaultView)
	if v == nil {
		v = cat.DefaultView(d)
	}
	if v != nil {
		vs.ViewTransform = v.Name
	}
	return vs
}

// CheckDisplaySettings replaces an empty or unknown display device with the
// default display.
func (m *Manager) CheckDisplaySettings(display *DisplaySettings) {
	cat := m.session().cat
	def := cat.DefaultDisplay()
	if display.DisplayDevice == "" {
		display.DisplayDevice = def.Name
		return
	}
	if cat.DisplayNamed(display.DisplayDevice) == nil {
		Logger().Info("colormanage: display not found, using default",
			slog.String("display", display.DisplayDevice), slog.String("default", def.Name))
		display.DisplayDevice = def.Name
	}
}

// CheckViewSettings replaces unknown names in view with defaults for
// display. A look that does not apply to the view becomes "None". A zero
// exposure with zero gamma, the zero value, becomes the identity settings.
func (m *Manager) CheckViewSettings(display DisplaySettings, view *ViewSettings) {
	cat := m.session().cat
	d := cat.DisplayNamed(display.DisplayDevice)

	switch {
	case view.ViewTransform == "":
		if v := cat.DefaultView(d); v != nil {
			view.ViewTransform = v.Name
		}
	case cat.ViewNamed(view.ViewTransform) == nil:
		if v := cat.DefaultView(d); v != nil {
			Logger().Info("colormanage: view not found, using default",
				slog.String("view", view.ViewTransform), slog.String("default", v.Name))
			view.ViewTransform = v.Name
		}
	}

	if view.Look == "" {
		view.Look = catalog.NoneLook
	} else if l := cat.LookNamed(view.Look); l == nil {
		Logger().Info("colormanage: look not found, using none", slog.String("look", view.Look))
		view.Look = catalog.NoneLook
	} else if !catalog.CompatibleLook(l, view.ViewTransform) {
		Logger().Info("colormanage: look not compatible with view, using none",
			slog.String("look", view.Look), slog.String("view", view.ViewTransform))
		view.Look = catalog.NoneLook
	}

	if view.Exposure == 0 && view.Gamma == 0 {
		view.Gamma = 1
	}
}

// ValidateViewSettings makes sure the view belongs to the display,
// replacing it with the display's default view otherwise.
func (m *Manager) ValidateViewSettings(display DisplaySettings, view *ViewSettings) {
	cat := m.session().cat
	d := cat.DisplayNamed(display.DisplayDevice)
	if d == nil {
		return
	}
	for _, v := range d.Views {
		if v.Name == view.ViewTransform {
			return
		}
	}
	if v := cat.DefaultView(d); v != nil {
		view.ViewTransform = v.Name
	}
}

// CheckColorSpaceName clears a color space name the catalog does not know.
// The empty name is left alone.
func (m *Manager) CheckColorSpaceName(name *string) {
	if *name == "" {
		return
	}
	if m.session().cat.ColorSpaceNamed(*name) == nil {
		Logger().Info("colormanage: color space not found", slog.String("colorspace", *name))
		*name = ""
	}
}

// curveOf returns the curve the settings apply, or nil.
func (vs *ViewSettings) curveOf() *curve.Mapping {
	if vs.Flags&UseCurveMapping == 0 {
		return nil
	}
	return vs.Curve
}

// processorParams converts settings into display processor parameters.
func processorParams(vs *ViewSettings, display DisplaySettings) processor.Display {
	return processor.Display{
		View:     vs.ViewTransform,
		Display:  display.DisplayDevice,
		Look:     vs.Look,
		Exposure: vs.Exposure,
		Gamma:    vs.Gamma,
		Curve:    vs.curveOf(),
	}
}

// cacheKey resolves the cache key and the validation snapshot for settings.
func cacheKey(cat *catalog.Catalog, vs *ViewSettings, display DisplaySettings, dither float32) (dispcache.Key, dispcache.Snapshot) {
	key := dispcache.Key{
		View:    cat.ViewNamedIndex(vs.ViewTransform),
		Display: cat.DisplayNamedIndex(display.DisplayDevice),
	}
	snap := dispcache.Snapshot{
		Look:     cat.LookNamedIndex(vs.Look),
		Exposure: vs.Exposure,
		Gamma:    vs.Gamma,
		Dither:   dither,
		Flags:    uint32(vs.Flags),
	}
	if c := vs.curveOf(); c != nil {
		snap.Curve = c
		snap.CurveRevision = c.Revision()
	}
	return key, snap
}
