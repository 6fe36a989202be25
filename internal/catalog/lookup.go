package catalog

import (
	"slices"
	"strings"
)

// ColorSpaces returns every registered color space in index order.
func (c *Catalog) ColorSpaces() []*ColorSpace { return slices.Clone(c.spaces) }

// InvertibleColorSpaces returns the color spaces usable as transform
// destinations.
func (c *Catalog) InvertibleColorSpaces() []*ColorSpace {
	var out []*ColorSpace
	for _, cs := range c.spaces {
		if cs.IsInvertible {
			out = append(out, cs)
		}
	}
	return out
}

// ColorSpaceNamed returns the color space called name, or nil.
func (c *Catalog) ColorSpaceNamed(name string) *ColorSpace {
	if name == "" {
		return nil
	}
	for _, cs := range c.spaces {
		if cs.Name == name {
			return cs
		}
	}
	return nil
}

// ColorSpaceRoled returns the color space bound to role, or nil.
func (c *Catalog) ColorSpaceRoled(role string) *ColorSpace {
	return c.ColorSpaceNamed(c.Role(role))
}

// ColorSpaceIndexed returns the color space at 1-based index, or nil.
func (c *Catalog) ColorSpaceIndexed(index int) *ColorSpace {
	return indexed(c.spaces, index)
}

// ColorSpaceNamedIndex returns the index of name, or 0.
func (c *Catalog) ColorSpaceNamedIndex(name string) int {
	if cs := c.ColorSpaceNamed(name); cs != nil {
		return cs.Index
	}
	return 0
}

// ColorSpaceIndexedName returns the name at index, or "".
func (c *Catalog) ColorSpaceIndexedName(index int) string {
	if cs := c.ColorSpaceIndexed(index); cs != nil {
		return cs.Name
	}
	return ""
}

// IsDataName reports whether name is a non-color data space.
func (c *Catalog) IsDataName(name string) bool {
	cs := c.ColorSpaceNamed(name)
	return cs != nil && cs.IsData
}

// Displays returns every registered display in index order.
func (c *Catalog) Displays() []*Display { return slices.Clone(c.displays) }

// NumDisplays returns the number of registered displays.
func (c *Catalog) NumDisplays() int { return len(c.displays) }

// DisplayNamed returns the display called name, or nil.
func (c *Catalog) DisplayNamed(name string) *Display {
	if name == "" {
		return nil
	}
	for _, d := range c.displays {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// DisplayIndexed returns the display at 1-based index, or nil.
func (c *Catalog) DisplayIndexed(index int) *Display {
	return indexed(c.displays, index)
}

func (c *Catalog) DisplayNamedIndex(name string) int {
	if d := c.DisplayNamed(name); d != nil {
		return d.Index
	}
	return 0
}

func (c *Catalog) DisplayIndexedName(index int) string {
	if d := c.DisplayIndexed(index); d != nil {
		return d.Name
	}
	return ""
}

// DefaultDisplay returns the config default display, falling back to the
// first registered one. It is nil only for an unusable catalog.
func (c *Catalog) DefaultDisplay() *Display {
	if d := c.DisplayNamed(c.defaultDisplay); d != nil {
		return d
	}
	if len(c.displays) > 0 {
		return c.displays[0]
	}
	return nil
}

// DisplayNoneName returns the display used for non-color previews: the
// "None" display if registered, otherwise the default display.
func (c *Catalog) DisplayNoneName() string {
	if d := c.DisplayNamed(NoneDisplay); d != nil {
		return d.Name
	}
	if d := c.DefaultDisplay(); d != nil {
		return d.Name
	}
	return ""
}

// Views returns every registered view in index order.
func (c *Catalog) Views() []*View { return slices.Clone(c.views) }

// NumViews returns the number of registered views.
func (c *Catalog) NumViews() int { return len(c.views) }

// ViewNamed returns the view called name, or nil.
func (c *Catalog) ViewNamed(name string) *View {
	if name == "" {
		return nil
	}
	for _, v := range c.views {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// ViewIndexed returns the view at 1-based index, or nil.
func (c *Catalog) ViewIndexed(index int) *View {
	return indexed(c.views, index)
}

func (c *Catalog) ViewNamedIndex(name string) int {
	if v := c.ViewNamed(name); v != nil {
		return v.Index
	}
	return 0
}

func (c *Catalog) ViewIndexedName(index int) string {
	if v := c.ViewIndexed(index); v != nil {
		return v.Name
	}
	return ""
}

// DefaultView returns the default view of d, falling back to its first
// view. It returns nil when d is nil or offers no views.
func (c *Catalog) DefaultView(d *Display) *View {
	if d == nil {
		return nil
	}
	for _, v := range d.Views {
		if v.Name == d.defaultView {
			return v
		}
	}
	if len(d.Views) > 0 {
		return d.Views[0]
	}
	return nil
}

// ViewNamedForDisplay returns the view of d whose name matches name
// ignoring case, or nil.
func (c *Catalog) ViewNamedForDisplay(d *Display, name string) *View {
	if d == nil {
		return nil
	}
	for _, v := range d.Views {
		if strings.EqualFold(v.Name, name) {
			return v
		}
	}
	return nil
}

// DisplayColorSpaceName returns the color space view encodes into on
// display, or "" when the pair is unknown.
func (c *Catalog) DisplayColorSpaceName(view, display string) string {
	name := c.cfg.DisplayColorSpace(display, view)
	if cs := c.ColorSpaceNamed(name); cs != nil {
		return cs.Name
	}
	return ""
}

// DisplayColorSpace is DisplayColorSpaceName resolved to its entry.
func (c *Catalog) DisplayColorSpace(view, display string) *ColorSpace {
	return c.ColorSpaceNamed(c.DisplayColorSpaceName(view, display))
}

// Looks returns every registered look in index order, "None" first.
func (c *Catalog) Looks() []*Look { return slices.Clone(c.looks) }

// LookNamed returns the look called name, or nil.
func (c *Catalog) LookNamed(name string) *Look {
	if name == "" {
		return nil
	}
	for _, l := range c.looks {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// LookIndexed returns the look at 1-based index, or nil.
func (c *Catalog) LookIndexed(index int) *Look {
	return indexed(c.looks, index)
}

func (c *Catalog) LookNamedIndex(name string) int {
	if l := c.LookNamed(name); l != nil {
		return l.Index
	}
	return 0
}

func (c *Catalog) LookIndexedName(index int) string {
	if l := c.LookIndexed(index); l != nil {
		return l.Name
	}
	return ""
}

// CompatibleLook reports whether l may be offered together with view.
func CompatibleLook(l *Look, view string) bool {
	if l.IsNoop {
		return true
	}
	return l.View == "" || l.View == view
}

// UseLook reports whether the look called name changes the output of view.
func (c *Catalog) UseLook(name, view string) bool {
	l := c.LookNamed(name)
	return l != nil && !l.IsNoop && CompatibleLook(l, view)
}

// LooksForView returns the looks compatible with view, "None" first.
func (c *Catalog) LooksForView(view string) []*Look {
	var out []*Look
	for _, l := range c.looks {
		if CompatibleLook(l, view) {
			out = append(out, l)
		}
	}
	return out
}

func indexed[T any](list []*T, index int) *T {
	if index < 1 || index > len(list) {
		return nil
	}
	return list[index-1]
}
