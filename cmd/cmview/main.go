// Command cmview renders an image through a display transform and saves
// the display-referred result.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"

	"github.com/gogpu/colormanage"
	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/imbuf"
)

func main() {
	var (
		input    = flag.String("input", "", "input image")
		output   = flag.String("output", "view.png", "output file")
		config   = flag.String("config", "", "built-in engine config (JSON)")
		space    = flag.String("space", "sRGB", "color space of the input pixels")
		display  = flag.String("display", "", "display device (default from config)")
		view     = flag.String("view", "", "view transform (default for display)")
		look     = flag.String("look", "None", "look")
		exposure = flag.Float64("exposure", 0, "exposure in stops")
		gamma    = flag.Float64("gamma", 1, "display gamma")
		dither   = flag.Float64("dither", 0, "dither amount")
		linear   = flag.Bool("linear", false, "convert the input to scene-linear floats first")
		list     = flag.Bool("list", false, "list displays, views and looks and exit")
		verbose  = flag.Bool("v", false, "log to stderr")
	)
	flag.Parse()

	if *verbose {
		colormanage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var opts []colormanage.Option
	if *config != "" {
		opts = append(opts, colormanage.WithConfigFile(*config))
	}
	m := colormanage.New(opts...)
	defer m.Close()

	if *list {
		printCatalog(m.Catalog())
		return
	}
	if *input == "" {
		log.Fatal("missing -input")
	}

	img, err := imaging.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open: %v", err)
	}

	buf := imbuf.FromImage(img)
	buf.ByteSpace = *space
	buf.Dither = float32(*dither)
	m.CheckColorSpaceName(&buf.ByteSpace)

	if *linear {
		buf.Floats = make([]float32, buf.Pixels()*4)
		m.TransformFromByteThreaded(buf.Floats, buf.Bytes, buf.Width, buf.Height, 4, buf.ByteSpace,
			m.Catalog().Role(engine.RoleSceneLinear))
	}

	ds := colormanage.DisplaySettings{DisplayDevice: *display}
	m.CheckDisplaySettings(&ds)

	vs := colormanage.ViewSettings{
		ViewTransform: *view,
		Look:          *look,
		Exposure:      float32(*exposure),
		Gamma:         float32(*gamma),
	}
	m.CheckViewSettings(ds, &vs)
	m.ValidateViewSettings(ds, &vs)

	pixels, h := m.AcquireDisplayBuffer(buf, &vs, ds)
	defer m.ReleaseDisplayBuffer(h)

	if err := imaging.Save(imbuf.ToNRGBA(buf.Width, buf.Height, pixels), *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Saved %s (%dx%d, %s / %s)\n", *output, buf.Width, buf.Height, ds.DisplayDevice, vs.ViewTransform)
}

func printCatalog(cat *colormanage.Catalog) {
	for _, d := range cat.Displays() {
		fmt.Printf("display %s\n", d.Name)
		for _, v := range d.Views {
			fmt.Printf("  view %-12s %s\n", v.Name, cat.DisplayColorSpaceName(v.Name, d.Name))
		}
	}
	for _, l := range cat.Looks() {
		fmt.Printf("look %s\n", l.Name)
	}
	for _, cs := range cat.ColorSpaces() {
		fmt.Printf("colorspace %s\n", cs.Name)
	}
}
