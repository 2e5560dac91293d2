package icon

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// textLift moves the text up by this fraction of its height so it reads as
// optically centred.
const textLift = 0.1

// Gradient fills a w*h image blending start into end along the diagonal.
// The blend weight of pixel (x, y) is 255*(x+y)/(w+h).
func Gradient(w, h int, start, end color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := uint32(255 * (x + y) / (w + h))
			img.SetNRGBA(x, y, color.NRGBA{
				R: blend(start.R, end.R, m),
				G: blend(start.G, end.G, m),
				B: blend(start.B, end.B, m),
				A: blend(start.A, end.A, m),
			})
		}
	}

	return img
}

func blend(a, b uint8, m uint32) uint8 {
	return uint8((uint32(a)*(255-m) + uint32(b)*m + 127) / 255)
}

// LoadFace opens the TrueType/OpenType font at path. An empty path, or a font
// that fails to load, falls back to the embedded Go Bold face.
func LoadFace(path string, size float64, log logrus.FieldLogger) (font.Face, error) {
	if path != "" {
		face, err := loadFontFile(path, size)
		if err == nil {
			return face, nil
		}

		log.WithError(err).WithField("font", path).Warn("Failed to load font, falling back to Go Bold")
	}

	return newFace(gobold.TTF, size)
}

func loadFontFile(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided font path
	if err != nil {
		return nil, err
	}

	return newFace(data, size)
}

func newFace(data []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// DrawCentered draws text in col so that its ink box is centred on img,
// lifted slightly above the geometric centre.
func DrawCentered(img *image.NRGBA, face font.Face, text string, col color.NRGBA) {
	if text == "" {
		return
	}

	bounds, _ := font.BoundString(face, text)
	textW := bounds.Max.X - bounds.Min.X
	textH := bounds.Max.Y - bounds.Min.Y

	size := img.Bounds().Size()
	x := (fixed.I(size.X) - textW) / 2
	lift := fixed.Int26_6(float64(textH) * textLift)
	y := (fixed.I(size.Y)-textH)/2 - lift

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: x - bounds.Min.X, Y: y - bounds.Min.Y},
	}
	d.DrawString(text)
}

// Render produces the icon image described by cfg.
func Render(cfg *Config, face font.Face) (*image.NRGBA, error) {
	start, err := ParseColor(cfg.StartColor)
	if err != nil {
		return nil, err
	}

	end, err := ParseColor(cfg.EndColor)
	if err != nil {
		return nil, err
	}

	textColor, err := ParseColor(cfg.TextColor)
	if err != nil {
		return nil, err
	}

	img := Gradient(cfg.Size, cfg.Size, start, end)
	DrawCentered(img, face, cfg.Text, textColor)

	return img, nil
}
