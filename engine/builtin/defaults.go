package builtin

import "github.com/gogpu/colormanage/engine"

// Default returns the config used when no config file is supplied.
func Default() *Config {
	return mustResolve(&Config{
		Name: "default",
		ColorSpaceDefs: []ColorSpace{
			{Name: "Linear", Description: "Rec.709 primaries with linear transfer", Transfer: "linear"},
			{Name: "Linear Rec.2020", Description: "Rec.2020 primaries with linear transfer", Primaries: "rec2020", Transfer: "linear"},
			{Name: "XYZ", Description: "CIE XYZ (D65)", Primaries: "xyz", Transfer: "linear"},
			{Name: "sRGB", Description: "Standard RGB display space", Transfer: "srgb"},
			{Name: "Display P3", Description: "Display P3 primaries with sRGB transfer", Primaries: "p3", Transfer: "srgb"},
			{Name: "Adobe RGB", Description: "Adobe RGB (1998)", Primaries: "adobe", Transfer: "gamma22"},
			{Name: "Gamma 2.4", Description: "Rec.709 primaries with 2.4 power transfer", Transfer: "gamma24"},
			{Name: "Filmic Log", Description: "Log encoding with 16.5 stops of range", Transfer: "log"},
			{Name: "Filmic sRGB", Description: "Filmic highlight compression\r\nencoded for sRGB displays\r\n", Transfer: "filmic"},
			{Name: "Non-Color", Description: "Color space for non-color data such as normals and masks", Data: true},
		},
		DisplayDefs: []Display{
			{Name: "sRGB", Views: []View{
				{Name: "Standard", ColorSpace: "sRGB"},
				{Name: "Filmic", ColorSpace: "Filmic sRGB"},
				{Name: "Raw", ColorSpace: "Non-Color"},
			}},
			{Name: "Display P3", Views: []View{
				{Name: "Standard", ColorSpace: "Display P3"},
				{Name: "Filmic", ColorSpace: "Filmic sRGB"},
				{Name: "Raw", ColorSpace: "Non-Color"},
			}},
			{Name: "Rec.1886", Views: []View{
				{Name: "Standard", ColorSpace: "Gamma 2.4"},
				{Name: "Raw", ColorSpace: "Non-Color"},
			}},
		},
		LookDefs: []Look{
			{Name: "Filmic - Very High Contrast", ProcessSpace: "Filmic Log", Contrast: 1.6},
			{Name: "Filmic - High Contrast", ProcessSpace: "Filmic Log", Contrast: 1.3},
			{Name: "Filmic - Low Contrast", ProcessSpace: "Filmic Log", Contrast: 0.8},
			{Name: "Punchy", ProcessSpace: "sRGB", Contrast: 1.15, Saturation: 1.2},
		},
		RoleMap: map[string]string{
			engine.RoleData:             "Non-Color",
			engine.RoleSceneLinear:      "Linear",
			engine.RoleColorPicking:     "sRGB",
			engine.RoleTexturePaint:     "sRGB",
			engine.RoleDefaultByte:      "sRGB",
			engine.RoleDefaultFloat:     "Linear",
			engine.RoleDefaultSequencer: "sRGB",
		},
		DefaultDisplayName: "sRGB",
	})
}

// Fallback returns the minimal config used when a loaded config has no
// usable displays or views. It always has one display and two views.
func Fallback() *Config {
	return mustResolve(&Config{
		Name: "fallback",
		ColorSpaceDefs: []ColorSpace{
			{Name: "Linear", Transfer: "linear"},
			{Name: "sRGB", Transfer: "srgb"},
			{Name: "Non-Color", Data: true},
		},
		DisplayDefs: []Display{
			{Name: "sRGB", Views: []View{
				{Name: "Standard", ColorSpace: "sRGB"},
				{Name: "Raw", ColorSpace: "Non-Color"},
			}},
		},
		RoleMap: map[string]string{
			engine.RoleData:         "Non-Color",
			engine.RoleSceneLinear:  "Linear",
			engine.RoleColorPicking: "sRGB",
			engine.RoleTexturePaint: "sRGB",
		},
	})
}
