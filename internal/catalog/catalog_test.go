package catalog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/engine/builtin"
)

func loadDefault(t *testing.T) *Catalog {
	t.Helper()
	cfg := builtin.Default()
	c := Load(cfg, builtin.New(cfg), nil)
	t.Cleanup(c.Close)
	return c
}

func loadJSON(t *testing.T, doc string, log *slog.Logger) *Catalog {
	t.Helper()
	cfg, err := builtin.ParseConfig([]byte(doc))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	c := Load(cfg, builtin.New(cfg), loggerFunc(log))
	t.Cleanup(c.Close)
	return c
}

func loggerFunc(l *slog.Logger) func() *slog.Logger {
	if l == nil {
		return nil
	}
	return func() *slog.Logger { return l }
}

// =============================================================================
// Registration
// =============================================================================

func TestLoad_ColorSpacesSortedCaseInsensitive(t *testing.T) {
	c := loadDefault(t)

	want := []string{
		"Adobe RGB", "Display P3", "Filmic Log", "Filmic sRGB", "Gamma 2.4",
		"Linear", "Linear Rec.2020", "Non-Color", "sRGB", "XYZ",
	}
	got := c.ColorSpaces()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, cs := range got {
		if cs.Name != want[i] {
			t.Errorf("space %d = %q, want %q", i, cs.Name, want[i])
		}
		if cs.Index != i+1 {
			t.Errorf("%s index = %d, want %d", cs.Name, cs.Index, i+1)
		}
	}
}

func TestLoad_DescriptionStripped(t *testing.T) {
	c := loadDefault(t)
	cs := c.ColorSpaceNamed("Filmic sRGB")
	if cs == nil {
		t.Fatal("Filmic sRGB not registered")
	}
	want := "Filmic highlight compression  encoded for sRGB displays"
	if cs.Description != want {
		t.Errorf("Description = %q, want %q", cs.Description, want)
	}
}

func TestStripDescription(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"trailing\n", "trailing"},
		{"trailing\r\n\r\n", "trailing"},
		{"two\nlines", "two lines"},
		{"crlf\r\ninside\n", "crlf  inside"},
	}
	for _, tt := range tests {
		if got := stripDescription(tt.in); got != tt.want {
			t.Errorf("stripDescription(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoad_ViewsSharedBetweenDisplays(t *testing.T) {
	c := loadDefault(t)

	if c.NumDisplays() != 3 {
		t.Fatalf("NumDisplays = %d, want 3", c.NumDisplays())
	}
	// Standard, Filmic and Raw are registered once.
	if c.NumViews() != 3 {
		t.Fatalf("NumViews = %d, want 3", c.NumViews())
	}
	srgb := c.DisplayNamed("sRGB")
	p3 := c.DisplayNamed("Display P3")
	if srgb.Views[0] != p3.Views[0] {
		t.Error("Standard view not shared between displays")
	}
	rec := c.DisplayNamed("Rec.1886")
	if len(rec.Views) != 2 || rec.Views[1].Name != "Raw" {
		t.Errorf("Rec.1886 views = %v", rec.Views)
	}
	for i, v := range c.Views() {
		if v.Index != i+1 {
			t.Errorf("view %q index = %d, want %d", v.Name, v.Index, i+1)
		}
	}
}

func TestLoad_Looks(t *testing.T) {
	c := loadDefault(t)

	looks := c.Looks()
	if looks[0].Name != NoneLook || !looks[0].IsNoop || looks[0].Index != 1 {
		t.Fatalf("first look = %+v, want None no-op at index 1", looks[0])
	}

	hc := c.LookNamed("Filmic - High Contrast")
	if hc == nil {
		t.Fatal("look not registered")
	}
	if hc.View != "Filmic" || hc.UIName != "High Contrast" {
		t.Errorf("View/UIName = %q/%q", hc.View, hc.UIName)
	}
	if hc.ProcessSpace != "Filmic Log" {
		t.Errorf("ProcessSpace = %q", hc.ProcessSpace)
	}

	punchy := c.LookNamed("Punchy")
	if punchy.View != "" || punchy.UIName != "Punchy" {
		t.Errorf("Punchy View/UIName = %q/%q", punchy.View, punchy.UIName)
	}
}

func TestLoad_RoleFallbacks(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	c := loadJSON(t, `{
		"colorspaces": [{"name": "Linear"}, {"name": "sRGB", "transfer": "srgb"}],
		"displays": [{"name": "sRGB", "views": [{"name": "Standard", "colorspace": "sRGB"}]}],
		"roles": {"scene_linear": "Linear", "texture_paint": "sRGB"}
	}`, log)

	tests := []struct {
		role, want string
	}{
		{engine.RoleSceneLinear, "Linear"},
		{engine.RoleDefaultFloat, "Linear"},
		{engine.RoleDefaultSequencer, "Linear"},
		{engine.RoleDefaultByte, "sRGB"},
		{engine.RoleData, ""},
		{engine.RoleColorPicking, ""},
	}
	for _, tt := range tests {
		if got := c.Role(tt.role); got != tt.want {
			t.Errorf("Role(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
	if !strings.Contains(buf.String(), "role=data") {
		t.Errorf("missing role not logged: %s", buf.String())
	}
}

func TestLoad_Usable(t *testing.T) {
	c := loadJSON(t, `{"colorspaces": [{"name": "Linear"}], "displays": []}`, nil)
	if c.Usable() {
		t.Error("catalog without displays reported usable")
	}
	if c.DefaultDisplay() != nil {
		t.Error("DefaultDisplay non-nil without displays")
	}
	if loadDefault(t).Usable() != true {
		t.Error("default catalog not usable")
	}
}

// =============================================================================
// Lookups
// =============================================================================

func TestLookup_IndexRoundTrip(t *testing.T) {
	c := loadDefault(t)

	for _, cs := range c.ColorSpaces() {
		if got := c.ColorSpaceIndexedName(c.ColorSpaceNamedIndex(cs.Name)); got != cs.Name {
			t.Errorf("color space round trip %q -> %q", cs.Name, got)
		}
	}
	for _, d := range c.Displays() {
		if got := c.DisplayIndexedName(c.DisplayNamedIndex(d.Name)); got != d.Name {
			t.Errorf("display round trip %q -> %q", d.Name, got)
		}
	}
	for _, v := range c.Views() {
		if got := c.ViewIndexedName(c.ViewNamedIndex(v.Name)); got != v.Name {
			t.Errorf("view round trip %q -> %q", v.Name, got)
		}
	}
	for _, l := range c.Looks() {
		if got := c.LookIndexedName(c.LookNamedIndex(l.Name)); got != l.Name {
			t.Errorf("look round trip %q -> %q", l.Name, got)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	c := loadDefault(t)

	if c.ColorSpaceNamed("nope") != nil || c.ColorSpaceNamed("") != nil {
		t.Error("unknown color space resolved")
	}
	if c.ColorSpaceNamedIndex("nope") != 0 || c.ColorSpaceIndexedName(0) != "" {
		t.Error("unknown color space index not 0/empty")
	}
	if c.ColorSpaceIndexed(-1) != nil || c.ColorSpaceIndexed(100) != nil {
		t.Error("out of range color space index resolved")
	}
	if c.DisplayNamedIndex("nope") != 0 || c.DisplayIndexedName(99) != "" {
		t.Error("unknown display resolved")
	}
	if c.ViewNamedIndex("nope") != 0 || c.ViewIndexedName(99) != "" {
		t.Error("unknown view resolved")
	}
	if c.LookNamedIndex("nope") != 0 || c.LookIndexedName(99) != "" {
		t.Error("unknown look resolved")
	}
	if c.DefaultView(nil) != nil || c.ViewNamedForDisplay(nil, "Standard") != nil {
		t.Error("nil display resolved a view")
	}
}

func TestLookup_Defaults(t *testing.T) {
	c := loadDefault(t)

	d := c.DefaultDisplay()
	if d == nil || d.Name != "sRGB" {
		t.Fatalf("DefaultDisplay = %v", d)
	}
	if v := c.DefaultView(d); v == nil || v.Name != "Standard" {
		t.Errorf("DefaultView = %v", v)
	}
	// No "None" display is registered.
	if got := c.DisplayNoneName(); got != "sRGB" {
		t.Errorf("DisplayNoneName = %q, want sRGB", got)
	}
}

func TestLookup_DisplayNoneName(t *testing.T) {
	c := loadJSON(t, `{
		"colorspaces": [{"name": "sRGB", "transfer": "srgb"}, {"name": "Non-Color", "data": true}],
		"displays": [
			{"name": "sRGB", "views": [{"name": "Standard", "colorspace": "sRGB"}]},
			{"name": "None", "views": [{"name": "Standard", "colorspace": "Non-Color"}]}
		]
	}`, nil)
	if got := c.DisplayNoneName(); got != "None" {
		t.Errorf("DisplayNoneName = %q, want None", got)
	}
}

func TestLookup_ViewNamedForDisplayIgnoresCase(t *testing.T) {
	c := loadDefault(t)
	d := c.DisplayNamed("Rec.1886")

	if v := c.ViewNamedForDisplay(d, "raw"); v == nil || v.Name != "Raw" {
		t.Errorf("ViewNamedForDisplay(raw) = %v", v)
	}
	if v := c.ViewNamedForDisplay(d, "Filmic"); v != nil {
		t.Errorf("Rec.1886 offers Filmic: %v", v)
	}
}

func TestLookup_DisplayColorSpace(t *testing.T) {
	c := loadDefault(t)

	tests := []struct {
		view, display, want string
	}{
		{"Standard", "sRGB", "sRGB"},
		{"Standard", "Display P3", "Display P3"},
		{"Filmic", "sRGB", "Filmic sRGB"},
		{"Raw", "Rec.1886", "Non-Color"},
		{"Filmic", "Rec.1886", ""},
		{"Standard", "nope", ""},
	}
	for _, tt := range tests {
		if got := c.DisplayColorSpaceName(tt.view, tt.display); got != tt.want {
			t.Errorf("DisplayColorSpaceName(%q, %q) = %q, want %q", tt.view, tt.display, got, tt.want)
		}
	}
	if cs := c.DisplayColorSpace("Raw", "sRGB"); cs == nil || !cs.IsData {
		t.Errorf("Raw display space = %v, want data", cs)
	}
}

func TestLookup_LookCompatibility(t *testing.T) {
	c := loadDefault(t)

	if !c.UseLook("Filmic - High Contrast", "Filmic") {
		t.Error("view-specific look unused for its view")
	}
	if c.UseLook("Filmic - High Contrast", "Standard") {
		t.Error("view-specific look used for another view")
	}
	if !c.UseLook("Punchy", "Standard") {
		t.Error("global look unused")
	}
	if c.UseLook(NoneLook, "Standard") || c.UseLook("nope", "Standard") {
		t.Error("None or unknown look used")
	}

	names := func(ls []*Look) []string {
		out := make([]string, len(ls))
		for i, l := range ls {
			out[i] = l.Name
		}
		return out
	}
	std := names(c.LooksForView("Standard"))
	if len(std) != 2 || std[0] != NoneLook || std[1] != "Punchy" {
		t.Errorf("LooksForView(Standard) = %v", std)
	}
	if got := len(c.LooksForView("Filmic")); got != 5 {
		t.Errorf("LooksForView(Filmic) = %d looks, want 5", got)
	}
}

func TestLookup_InvertibleColorSpaces(t *testing.T) {
	c := loadDefault(t)
	for _, cs := range c.InvertibleColorSpaces() {
		if cs.Name == "Filmic sRGB" {
			t.Error("Filmic sRGB listed as invertible")
		}
	}
	if got, all := len(c.InvertibleColorSpaces()), len(c.ColorSpaces()); got != all-1 {
		t.Errorf("invertible = %d, want %d", got, all-1)
	}
}

func TestColorSpace_Classify(t *testing.T) {
	c := loadDefault(t)

	tests := []struct {
		name              string
		sceneLinear, srgb bool
	}{
		{"Linear", true, false},
		{"sRGB", false, true},
		{"Linear Rec.2020", false, false},
		{"Display P3", false, false},
		{"Non-Color", false, false},
	}
	for _, tt := range tests {
		cs := c.ColorSpaceNamed(tt.name)
		if cs.IsSceneLinear() != tt.sceneLinear || cs.IsSRGB() != tt.srgb {
			t.Errorf("%s: sceneLinear=%v srgb=%v, want %v %v",
				tt.name, cs.IsSceneLinear(), cs.IsSRGB(), tt.sceneLinear, tt.srgb)
		}
	}
	if !c.IsDataName("Non-Color") || c.IsDataName("sRGB") || c.IsDataName("nope") {
		t.Error("IsDataName mismatch")
	}
}

// =============================================================================
// Matrices and transforms
// =============================================================================

func TestMatrices_Inverse(t *testing.T) {
	c := loadDefault(t)

	check := func(name string, a, b [9]float32) {
		for r := 0; r < 3; r++ {
			for col := 0; col < 3; col++ {
				var s float32
				for k := 0; k < 3; k++ {
					s += a[r*3+k] * b[k*3+col]
				}
				want := float32(0)
				if r == col {
					want = 1
				}
				if d := s - want; d > 1e-4 || d < -1e-4 {
					t.Errorf("%s [%d][%d] = %v, want %v", name, r, col, s, want)
				}
			}
		}
	}
	check("xyz*rgb", c.XYZToRGB(), c.RGBToXYZ())
	check("srgb", c.XYZToLinearSRGB(), c.LinearSRGBToXYZ())

	luma := c.LumaCoefficients()
	if sum := luma[0] + luma[1] + luma[2]; sum < 0.999 || sum > 1.001 {
		t.Errorf("luma sum = %v", sum)
	}
}

func TestTransforms_Cached(t *testing.T) {
	c := loadDefault(t)
	cs := c.ColorSpaceNamed("sRGB")

	to := c.ToSceneLinear(cs)
	if to == nil {
		t.Fatal("ToSceneLinear(sRGB) = nil")
	}
	if c.ToSceneLinear(cs) != to {
		t.Error("ToSceneLinear not memoized")
	}
	from := c.FromSceneLinear(cs)
	px := []float32{0.5, 0.25, 0.75}
	to.ApplyRGB(px)
	from.ApplyRGB(px)
	for i, want := range []float32{0.5, 0.25, 0.75} {
		if d := px[i] - want; d > 1e-4 || d < -1e-4 {
			t.Errorf("round trip [%d] = %v, want %v", i, px[i], want)
		}
	}

	d := c.DefaultDisplay()
	if c.DisplayToSceneLinear(d) == nil || c.SceneLinearToDisplay(d) == nil {
		t.Error("display transforms missing")
	}
	if c.ToSceneLinear(nil) != nil || c.DisplayToSceneLinear(nil) != nil {
		t.Error("nil entries produced transforms")
	}
}

func TestTransforms_FailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	cfg := builtin.Default()
	c := Load(cfg, builtin.New(cfg), loggerFunc(log))
	defer c.Close()

	for i := 0; i < 3; i++ {
		if tr := c.SpaceTransform("nope", "sRGB"); tr != nil {
			t.Fatal("transform from unknown space created")
		}
	}
	if n := strings.Count(buf.String(), "transform unavailable"); n != 1 {
		t.Errorf("warning logged %d times, want 1", n)
	}
}

func TestTransforms_ColorPickingStickyFailure(t *testing.T) {
	c := loadJSON(t, `{
		"colorspaces": [{"name": "Linear"}, {"name": "sRGB", "transfer": "srgb"}],
		"displays": [{"name": "sRGB", "views": [{"name": "Standard", "colorspace": "sRGB"}]}],
		"roles": {"scene_linear": "Linear"}
	}`, nil)

	if c.SceneLinearToColorPicking() != nil {
		t.Fatal("picking transform created without picking role")
	}
	if !c.pickingFailed.Load() {
		t.Fatal("failure not recorded")
	}
	if c.ColorPickingToSceneLinear() != nil {
		t.Error("reverse picking transform created after failure")
	}

	ok := loadDefault(t)
	if ok.SceneLinearToColorPicking() == nil || ok.ColorPickingToSceneLinear() == nil {
		t.Error("picking transforms missing with role bound")
	}
}
