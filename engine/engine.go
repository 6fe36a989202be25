// Package engine defines the contracts between the color management core
// and the color transform engine that does the actual color math.
//
// The core never evaluates color science itself. It asks an Engine for
// compiled Transforms and reads catalog data from a Config. Package
// engine/builtin ships a matrix and transfer-curve implementation of both.
package engine

import (
	"errors"

	"golang.org/x/image/math/f32"
)

// Errors returned by engines and configs.
var (
	// ErrUnknownColorSpace is returned for names the config does not define.
	ErrUnknownColorSpace = errors.New("engine: unknown color space")

	// ErrUnknownDisplay is returned for display names the config does not define.
	ErrUnknownDisplay = errors.New("engine: unknown display")

	// ErrUnknownView is returned for views a display does not offer.
	ErrUnknownView = errors.New("engine: unknown view")

	// ErrUnknownLook is returned for look names the config does not define.
	ErrUnknownLook = errors.New("engine: unknown look")
)

// Role names resolved by the catalog at load time.
const (
	RoleData             = "data"
	RoleSceneLinear      = "scene_linear"
	RoleColorPicking     = "color_picking"
	RoleTexturePaint     = "texture_paint"
	RoleDefaultByte      = "default_byte"
	RoleDefaultFloat     = "default_float"
	RoleDefaultSequencer = "default_sequencer"
)

// PackedImage describes a tightly packed float buffer.
type PackedImage struct {
	Data     []float32
	Width    int
	Height   int
	Channels int
}

// Transform is a compiled, CPU-evaluable color transform.
//
// A Transform is safe for concurrent Apply calls once created. It is
// reference counted: every creator or Retain caller owns one reference and
// must call Release exactly once.
type Transform interface {
	// ApplyRGB transforms the first three components of px.
	ApplyRGB(px []float32)

	// ApplyRGBA transforms px[0:3] and leaves alpha untouched.
	ApplyRGBA(px []float32)

	// ApplyRGBAPredivide divides out alpha, transforms, then re-associates.
	ApplyRGBAPredivide(px []float32)

	// Apply transforms every pixel of img. Images with fewer than three
	// channels are left unchanged.
	Apply(img PackedImage)

	// ApplyPredivide is Apply with alpha division around the transform.
	ApplyPredivide(img PackedImage)

	Retain()
	Release()
}

// DisplayRequest selects a display transform chain.
type DisplayRequest struct {
	// Source is the color space of the input pixels.
	Source string

	View    string
	Display string

	// Look is empty when no look applies.
	Look string

	// Scale multiplies scene-linear values before the view transform.
	Scale float32

	// Exponent is applied to display-encoded values.
	Exponent float32
}

// Engine compiles transforms. Implementations must tolerate being asked for
// the same transform repeatedly.
type Engine interface {
	CreateDisplayTransform(req DisplayRequest) (Transform, error)
	CreateSpaceTransform(from, to string) (Transform, error)
}

// ColorSpaceDesc describes one color space of a config.
type ColorSpaceDesc struct {
	Name        string
	Description string
	Invertible  bool
	Data        bool
}

// DisplayDesc lists the views a display offers, in config order.
type DisplayDesc struct {
	Name  string
	Views []string
}

// LookDesc describes a grading look.
type LookDesc struct {
	Name         string
	ProcessSpace string
	Invertible   bool
}

// Config is the catalog source: it enumerates everything the catalog
// registers and answers the few questions the core cannot derive itself.
type Config interface {
	ColorSpaces() []ColorSpaceDesc
	Displays() []DisplayDesc
	Looks() []LookDesc

	// Role returns the color space bound to role.
	Role(role string) (string, bool)

	DefaultDisplay() string
	DefaultView(display string) string

	// DisplayColorSpace returns the color space a view of a display
	// encodes into, or "" if unknown.
	DisplayColorSpace(display, view string) string

	// ClassifyColorSpace reports whether name is the scene-linear
	// reference and whether it is plain sRGB.
	ClassifyColorSpace(name string) (sceneLinear, srgb bool)

	LumaCoefficients() [3]float32

	// XYZToRGB maps CIE XYZ to the scene-linear RGB primaries.
	XYZToRGB() f32.Mat3
}
