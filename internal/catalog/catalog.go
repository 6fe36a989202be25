// Package catalog is the registry of named color spaces, displays, views
// and looks the color management core resolves settings against.
//
// A Catalog is built once from an engine.Config and is read-only
// afterwards, apart from lazily created transforms and classifications.
// Every entry has a stable 1-based index; index 0 and the empty name are
// the "unknown" sentinels.
package catalog

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/image/math/f32"
	"golang.org/x/text/cases"

	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/internal/color"
	"github.com/gogpu/colormanage/internal/lazy"
)

// NoneLook is the name of the synthetic no-op look.
const NoneLook = "None"

// NoneDisplay is the display name used for non-color previews.
const NoneDisplay = "None"

// xyzToLinearSRGB maps D65 XYZ to linear Rec.709 primaries.
var xyzToLinearSRGB = f32.Mat3{
	3.24097, -1.5373832, -0.49861076,
	-0.96924365, 1.8759675, 0.041555058,
	0.05563008, -0.20397696, 1.0569715,
}

// slot memoizes a lazily created transform. A nil transform records a
// failed creation so it is not retried.
type slot struct {
	tr engine.Transform
}

// ColorSpace is a registered color space.
type ColorSpace struct {
	Name         string
	Index        int
	Description  string
	IsInvertible bool
	IsData       bool

	classifier   func(string) (bool, bool)
	classifyOnce sync.Once
	sceneLinear  bool
	srgb         bool

	toSceneLinear   lazy.Cell[slot]
	fromSceneLinear lazy.Cell[slot]
}

func (cs *ColorSpace) classify() {
	cs.classifyOnce.Do(func() {
		if cs.classifier != nil && !cs.IsData {
			cs.sceneLinear, cs.srgb = cs.classifier(cs.Name)
		}
	})
}

// IsSceneLinear reports whether the space is the scene-linear reference.
// The answer is computed on first use and cached.
func (cs *ColorSpace) IsSceneLinear() bool {
	cs.classify()
	return cs.sceneLinear
}

// IsSRGB reports whether the space is plain sRGB.
func (cs *ColorSpace) IsSRGB() bool {
	cs.classify()
	return cs.srgb
}

// View is a registered view transform. Views are shared between displays.
type View struct {
	Name  string
	Index int
}

// Display is a registered display device.
type Display struct {
	Name  string
	Index int

	// Views lists the views the display offers, in config order.
	Views []*View

	defaultView string

	toSceneLinear   lazy.Cell[slot]
	fromSceneLinear lazy.Cell[slot]
}

// Look is a registered grading look.
type Look struct {
	Name         string
	Index        int
	UIName       string
	ProcessSpace string
	IsNoop       bool

	// View restricts the look to one view transform. Empty means global.
	View string
}

// Catalog holds every registered entry of one loaded config.
type Catalog struct {
	cfg    engine.Config
	eng    engine.Engine
	logger func() *slog.Logger

	spaces   []*ColorSpace
	displays []*Display
	views    []*View
	looks    []*Look
	roles    map[string]string

	defaultDisplay string

	luma            [3]float32
	xyzToRGB        f32.Mat3
	rgbToXYZ        f32.Mat3
	xyzToLinearSRGB f32.Mat3
	linearSRGBToXYZ f32.Mat3

	pickingTo     lazy.Cell[slot]
	pickingFrom   lazy.Cell[slot]
	pickingFailed atomic.Bool

	warned sync.Map
}

// roleFallbacks lists every resolved role with the role consulted when the
// config does not bind it.
var roleFallbacks = []struct {
	role, fallback string
}{
	{engine.RoleData, ""},
	{engine.RoleSceneLinear, ""},
	{engine.RoleColorPicking, ""},
	{engine.RoleTexturePaint, ""},
	{engine.RoleDefaultSequencer, engine.RoleSceneLinear},
	{engine.RoleDefaultByte, engine.RoleTexturePaint},
	{engine.RoleDefaultFloat, engine.RoleSceneLinear},
}

// Load builds a catalog from cfg. Transforms are compiled by eng on demand.
// logger is consulted on every message so a logger swapped after Load is
// honored; a nil logger discards messages.
//
// Load never fails. A config without displays or views produces a catalog
// for which Usable reports false; the caller must replace it.
func Load(cfg engine.Config, eng engine.Engine, logger func() *slog.Logger) *Catalog {
	if logger == nil {
		discard := slog.New(slog.DiscardHandler)
		logger = func() *slog.Logger { return discard }
	}
	c := &Catalog{
		cfg:    cfg,
		eng:    eng,
		logger: logger,
		roles:  make(map[string]string, len(roleFallbacks)),
	}
	log := logger()

	for _, r := range roleFallbacks {
		name, ok := cfg.Role(r.role)
		if !ok && r.fallback != "" {
			name, ok = cfg.Role(r.fallback)
		}
		if !ok {
			log.Warn("colormanage: could not find role", "role", r.role)
			name = ""
		}
		c.roles[r.role] = name
	}

	fold := cases.Fold()
	var keys []string
	for _, d := range cfg.ColorSpaces() {
		key := fold.String(d.Name)
		i := 0
		for i < len(keys) && keys[i] <= key {
			i++
		}
		keys = slices.Insert(keys, i, key)
		c.spaces = slices.Insert(c.spaces, i, &ColorSpace{
			Name:         d.Name,
			Description:  stripDescription(d.Description),
			IsInvertible: d.Invertible,
			IsData:       d.Data,
			classifier:   cfg.ClassifyColorSpace,
		})
		for j := i; j < len(c.spaces); j++ {
			c.spaces[j].Index = j + 1
		}
	}

	for _, d := range cfg.Displays() {
		disp := &Display{
			Name:        d.Name,
			Index:       len(c.displays) + 1,
			defaultView: cfg.DefaultView(d.Name),
		}
		for _, name := range d.Views {
			v := c.ViewNamed(name)
			if v == nil {
				v = &View{Name: name, Index: len(c.views) + 1}
				c.views = append(c.views, v)
			}
			disp.Views = append(disp.Views, v)
		}
		c.displays = append(c.displays, disp)
	}
	c.defaultDisplay = cfg.DefaultDisplay()

	c.addLook(NoneLook, "", true)
	for _, l := range cfg.Looks() {
		c.addLook(l.Name, l.ProcessSpace, false)
	}

	c.luma = cfg.LumaCoefficients()
	c.xyzToRGB = cfg.XYZToRGB()
	if inv, ok := color.InvertMat3(c.xyzToRGB); ok {
		c.rgbToXYZ = inv
	} else {
		log.Warn("colormanage: XYZ to RGB matrix is singular, using identity")
		c.xyzToRGB, c.rgbToXYZ = color.Identity3, color.Identity3
	}
	c.xyzToLinearSRGB = xyzToLinearSRGB
	c.linearSRGBToXYZ, _ = color.InvertMat3(xyzToLinearSRGB)

	log.Debug("colormanage: catalog loaded",
		"colorspaces", len(c.spaces),
		"displays", len(c.displays),
		"views", len(c.views),
		"looks", len(c.looks))
	return c
}

func (c *Catalog) addLook(name, processSpace string, noop bool) {
	l := &Look{
		Name:         name,
		Index:        len(c.looks) + 1,
		ProcessSpace: processSpace,
		IsNoop:       noop,
		UIName:       name,
	}
	if view, label, ok := strings.Cut(name, " - "); ok {
		l.View = view
		l.UIName = label
	}
	c.looks = append(c.looks, l)
}

// stripDescription removes trailing line breaks and joins the remaining
// lines with spaces.
func stripDescription(s string) string {
	s = strings.TrimRight(s, "\r\n")
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, s)
}

// Usable reports whether the catalog has at least one display and view.
func (c *Catalog) Usable() bool {
	return len(c.displays) > 0 && len(c.views) > 0
}

// Engine returns the transform engine the catalog compiles with.
func (c *Catalog) Engine() engine.Engine { return c.eng }

// Config returns the config the catalog was loaded from.
func (c *Catalog) Config() engine.Config { return c.cfg }

// Role returns the color space name bound to role, or "" when unbound.
func (c *Catalog) Role(role string) string {
	return c.roles[role]
}

// LumaCoefficients returns the config luma weights.
func (c *Catalog) LumaCoefficients() [3]float32 { return c.luma }

// XYZToRGB maps XYZ to scene-linear RGB.
func (c *Catalog) XYZToRGB() f32.Mat3 { return c.xyzToRGB }

// RGBToXYZ maps scene-linear RGB to XYZ.
func (c *Catalog) RGBToXYZ() f32.Mat3 { return c.rgbToXYZ }

// XYZToLinearSRGB maps XYZ to linear sRGB.
func (c *Catalog) XYZToLinearSRGB() f32.Mat3 { return c.xyzToLinearSRGB }

// LinearSRGBToXYZ maps linear sRGB to XYZ.
func (c *Catalog) LinearSRGBToXYZ() f32.Mat3 { return c.linearSRGBToXYZ }

// warnOnce logs msg the first time key is seen.
func (c *Catalog) warnOnce(key, msg string, args ...any) {
	if _, seen := c.warned.LoadOrStore(key, struct{}{}); seen {
		return
	}
	c.logger().Warn(msg, args...)
}

// Close releases every lazily created transform.
// The catalog must not be used afterwards.
func (c *Catalog) Close() {
	release := func(cell *lazy.Cell[slot]) {
		if s := cell.Reset(); s != nil && s.tr != nil {
			s.tr.Release()
		}
	}
	for _, cs := range c.spaces {
		release(&cs.toSceneLinear)
		release(&cs.fromSceneLinear)
	}
	for _, d := range c.displays {
		release(&d.toSceneLinear)
		release(&d.fromSceneLinear)
	}
	release(&c.pickingTo)
	release(&c.pickingFrom)
}
