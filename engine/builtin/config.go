package builtin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/colormanage/engine"
)

// ErrInvalidConfig is returned when a config document is malformed or
// references undefined names.
var ErrInvalidConfig = errors.New("builtin: invalid config")

// ColorSpace defines a color space by its primaries and transfer curve.
type ColorSpace struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Primaries is one of srgb, p3, adobe, rec2020 or xyz. Empty means srgb.
	Primaries string `json:"primaries,omitempty"`

	// Transfer is one of linear, srgb, gamma18, gamma22, gamma24, log or
	// filmic. Empty means linear.
	Transfer string `json:"transfer,omitempty"`

	// Data marks non-color spaces. Transforms into or out of them are
	// identities.
	Data bool `json:"data,omitempty"`

	gamut    *gamut
	transfer *transfer
}

// View binds a view name to the color space it encodes into.
type View struct {
	Name       string `json:"name"`
	ColorSpace string `json:"colorspace"`
}

// Display is an output device with its views in preference order.
type Display struct {
	Name  string `json:"name"`
	Views []View `json:"views"`
}

// Look is a contrast and saturation grade evaluated in ProcessSpace.
type Look struct {
	Name         string  `json:"name"`
	ProcessSpace string  `json:"process_space,omitempty"`
	Contrast     float32 `json:"contrast,omitempty"`
	Saturation   float32 `json:"saturation,omitempty"`
}

// Config is the document the built-in engine is configured from.
// It implements engine.Config.
type Config struct {
	Name           string            `json:"name,omitempty"`
	ColorSpaceDefs []ColorSpace      `json:"colorspaces"`
	DisplayDefs    []Display         `json:"displays"`
	LookDefs       []Look            `json:"looks,omitempty"`
	RoleMap        map[string]string `json:"roles,omitempty"`

	// DefaultDisplayName overrides the first display as default.
	DefaultDisplayName string `json:"default_display,omitempty"`

	// Luma overrides the luma coefficients derived from the scene-linear
	// primaries.
	Luma *[3]float32 `json:"luma,omitempty"`

	spaces   map[string]*ColorSpace
	displays map[string]*Display
	looks    map[string]*Look
}

var _ engine.Config = (*Config)(nil)

// ParseConfig decodes and validates a JSON config document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads and parses the JSON config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("builtin: read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// resolve indexes the document and binds primaries and transfer curves.
func (c *Config) resolve() error {
	c.spaces = make(map[string]*ColorSpace, len(c.ColorSpaceDefs))
	for i := range c.ColorSpaceDefs {
		cs := &c.ColorSpaceDefs[i]
		if cs.Name == "" {
			return fmt.Errorf("%w: color space %d has no name", ErrInvalidConfig, i)
		}
		if _, dup := c.spaces[cs.Name]; dup {
			return fmt.Errorf("%w: duplicate color space %q", ErrInvalidConfig, cs.Name)
		}

		prim := cs.Primaries
		if prim == "" {
			prim = "srgb"
		}
		g, ok := gamuts[prim]
		if !ok {
			return fmt.Errorf("%w: color space %q: unknown primaries %q", ErrInvalidConfig, cs.Name, cs.Primaries)
		}
		tr := cs.Transfer
		if tr == "" {
			tr = "linear"
		}
		t, ok := transfers[tr]
		if !ok {
			return fmt.Errorf("%w: color space %q: unknown transfer %q", ErrInvalidConfig, cs.Name, cs.Transfer)
		}
		cs.gamut, cs.transfer = g, t
		c.spaces[cs.Name] = cs
	}

	c.displays = make(map[string]*Display, len(c.DisplayDefs))
	for i := range c.DisplayDefs {
		d := &c.DisplayDefs[i]
		for _, v := range d.Views {
			if _, ok := c.spaces[v.ColorSpace]; !ok {
				return fmt.Errorf("%w: display %q view %q: unknown color space %q",
					ErrInvalidConfig, d.Name, v.Name, v.ColorSpace)
			}
		}
		c.displays[d.Name] = d
	}

	c.looks = make(map[string]*Look, len(c.LookDefs))
	for i := range c.LookDefs {
		l := &c.LookDefs[i]
		if l.ProcessSpace != "" {
			if _, ok := c.spaces[l.ProcessSpace]; !ok {
				return fmt.Errorf("%w: look %q: unknown process space %q", ErrInvalidConfig, l.Name, l.ProcessSpace)
			}
		}
		c.looks[l.Name] = l
	}

	for role, name := range c.RoleMap {
		if _, ok := c.spaces[name]; !ok {
			return fmt.Errorf("%w: role %q: unknown color space %q", ErrInvalidConfig, role, name)
		}
	}
	return nil
}

func mustResolve(c *Config) *Config {
	if err := c.resolve(); err != nil {
		panic(err)
	}
	return c
}

func (c *Config) space(name string) *ColorSpace {
	return c.spaces[name]
}

// reference returns the scene-linear color space, or nil when the config
// does not bind the role.
func (c *Config) reference() *ColorSpace {
	if name, ok := c.RoleMap[engine.RoleSceneLinear]; ok {
		return c.spaces[name]
	}
	return nil
}

func (c *Config) referenceGamut() *gamut {
	if ref := c.reference(); ref != nil {
		return ref.gamut
	}
	return gamuts["srgb"]
}

// ColorSpaces implements engine.Config.
func (c *Config) ColorSpaces() []engine.ColorSpaceDesc {
	out := make([]engine.ColorSpaceDesc, 0, len(c.ColorSpaceDefs))
	for i := range c.ColorSpaceDefs {
		cs := &c.ColorSpaceDefs[i]
		out = append(out, engine.ColorSpaceDesc{
			Name:        cs.Name,
			Description: cs.Description,
			Invertible:  cs.Data || cs.transfer.invertible,
			Data:        cs.Data,
		})
	}
	return out
}

// Displays implements engine.Config.
func (c *Config) Displays() []engine.DisplayDesc {
	out := make([]engine.DisplayDesc, 0, len(c.DisplayDefs))
	for _, d := range c.DisplayDefs {
		views := make([]string, len(d.Views))
		for i, v := range d.Views {
			views[i] = v.Name
		}
		out = append(out, engine.DisplayDesc{Name: d.Name, Views: views})
	}
	return out
}

// Looks implements engine.Config.
func (c *Config) Looks() []engine.LookDesc {
	out := make([]engine.LookDesc, 0, len(c.LookDefs))
	for _, l := range c.LookDefs {
		out = append(out, engine.LookDesc{
			Name:         l.Name,
			ProcessSpace: l.ProcessSpace,
			Invertible:   true,
		})
	}
	return out
}

// Role implements engine.Config.
func (c *Config) Role(role string) (string, bool) {
	name, ok := c.RoleMap[role]
	return name, ok
}

// DefaultDisplay implements engine.Config.
func (c *Config) DefaultDisplay() string {
	if c.DefaultDisplayName != "" {
		if _, ok := c.displays[c.DefaultDisplayName]; ok {
			return c.DefaultDisplayName
		}
	}
	if len(c.DisplayDefs) == 0 {
		return ""
	}
	return c.DisplayDefs[0].Name
}

// DefaultView implements engine.Config.
func (c *Config) DefaultView(display string) string {
	d, ok := c.displays[display]
	if !ok || len(d.Views) == 0 {
		return ""
	}
	return d.Views[0].Name
}

// DisplayColorSpace implements engine.Config.
func (c *Config) DisplayColorSpace(display, view string) string {
	d, ok := c.displays[display]
	if !ok {
		return ""
	}
	for _, v := range d.Views {
		if v.Name == view {
			return v.ColorSpace
		}
	}
	return ""
}

// ClassifyColorSpace implements engine.Config.
func (c *Config) ClassifyColorSpace(name string) (sceneLinear, srgb bool) {
	cs := c.space(name)
	if cs == nil || cs.Data {
		return false, false
	}
	sceneLinear = cs.transfer.isLinear() && cs.gamut == c.referenceGamut()
	srgb = cs.gamut.name == "srgb" && cs.transfer.name == "srgb"
	return sceneLinear, srgb
}

// LumaCoefficients implements engine.Config.
func (c *Config) LumaCoefficients() [3]float32 {
	if c.Luma != nil {
		return *c.Luma
	}
	m := c.referenceGamut().toXYZ
	return [3]float32{m[3], m[4], m[5]}
}

// XYZToRGB implements engine.Config.
func (c *Config) XYZToRGB() f32.Mat3 {
	return c.referenceGamut().fromXYZ
}

