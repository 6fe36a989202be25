package catalog

import (
	"log/slog"

	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/internal/lazy"
)

// SpaceTransform compiles a transform between two named color spaces. It
// returns nil, after logging once per pair, when the engine refuses.
// The caller owns the returned reference.
func (c *Catalog) SpaceTransform(from, to string) engine.Transform {
	tr, err := c.eng.CreateSpaceTransform(from, to)
	if err != nil {
		c.warnOnce("space\x00"+from+"\x00"+to, "colormanage: color space transform unavailable",
			slog.String("from", from), slog.String("to", to), slog.Any("err", err))
		return nil
	}
	return tr
}

// DisplayTransform compiles a display transform chain, or returns nil after
// logging once per request. The caller owns the returned reference.
func (c *Catalog) DisplayTransform(req engine.DisplayRequest) engine.Transform {
	tr, err := c.eng.CreateDisplayTransform(req)
	if err != nil {
		c.warnOnce("display\x00"+req.Source+"\x00"+req.View+"\x00"+req.Display+"\x00"+req.Look,
			"colormanage: display transform unavailable",
			slog.String("view", req.View), slog.String("display", req.Display),
			slog.String("look", req.Look), slog.Any("err", err))
		return nil
	}
	return tr
}

// borrowed returns the memoized transform of cell, creating it once.
// The catalog keeps ownership; callers must not release it.
func (c *Catalog) borrowed(cell *lazy.Cell[slot], from, to string) engine.Transform {
	return cell.Get(func() *slot {
		return &slot{tr: c.SpaceTransform(from, to)}
	}).tr
}

// ToSceneLinear returns the cached transform from cs to scene-linear, or
// nil if it cannot be created.
func (c *Catalog) ToSceneLinear(cs *ColorSpace) engine.Transform {
	if cs == nil {
		return nil
	}
	return c.borrowed(&cs.toSceneLinear, cs.Name, c.Role(engine.RoleSceneLinear))
}

// FromSceneLinear returns the cached transform from scene-linear to cs.
func (c *Catalog) FromSceneLinear(cs *ColorSpace) engine.Transform {
	if cs == nil {
		return nil
	}
	return c.borrowed(&cs.fromSceneLinear, c.Role(engine.RoleSceneLinear), cs.Name)
}

// displaySpace is the color space the default view of d encodes into.
func (c *Catalog) displaySpace(d *Display) string {
	v := c.DefaultView(d)
	if v == nil {
		return ""
	}
	return c.DisplayColorSpaceName(v.Name, d.Name)
}

// DisplayToSceneLinear returns the cached transform from the display space
// of d's default view to scene-linear.
func (c *Catalog) DisplayToSceneLinear(d *Display) engine.Transform {
	if d == nil {
		return nil
	}
	return c.borrowed(&d.toSceneLinear, c.displaySpace(d), c.Role(engine.RoleSceneLinear))
}

// SceneLinearToDisplay returns the cached transform from scene-linear to
// the display space of d's default view.
func (c *Catalog) SceneLinearToDisplay(d *Display) engine.Transform {
	if d == nil {
		return nil
	}
	return c.borrowed(&d.fromSceneLinear, c.Role(engine.RoleSceneLinear), c.displaySpace(d))
}

// SceneLinearToColorPicking returns the cached picking transform, or nil.
// A failure in either picking direction disables both.
func (c *Catalog) SceneLinearToColorPicking() engine.Transform {
	return c.picking(&c.pickingTo, c.Role(engine.RoleSceneLinear), c.Role(engine.RoleColorPicking))
}

// ColorPickingToSceneLinear is the inverse of SceneLinearToColorPicking.
func (c *Catalog) ColorPickingToSceneLinear() engine.Transform {
	return c.picking(&c.pickingFrom, c.Role(engine.RoleColorPicking), c.Role(engine.RoleSceneLinear))
}

func (c *Catalog) picking(cell *lazy.Cell[slot], from, to string) engine.Transform {
	if c.pickingFailed.Load() {
		if s := cell.Load(); s != nil {
			return s.tr
		}
		return nil
	}
	return cell.Get(func() *slot {
		tr := c.SpaceTransform(from, to)
		if tr == nil {
			c.pickingFailed.Store(true)
		}
		return &slot{tr: tr}
	}).tr
}
