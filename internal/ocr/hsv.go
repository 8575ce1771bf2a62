package ocr

import (
	"image"
	"image/color"
)

// rgbToHSV converts one pixel to OpenCV-convention HSV: H in [0,179],
// S and V in [0,255]. Keeping that convention means calibrated filter ranges
// can be lifted straight from any OpenCV-based tuning tool.
func rgbToHSV(r, g, b uint8) (h, s, v uint8) {
	rf, gf, bf := int(r), int(g), int(b)

	maxC := rf
	if gf > maxC {
		maxC = gf
	}
	if bf > maxC {
		maxC = bf
	}
	minC := rf
	if gf < minC {
		minC = gf
	}
	if bf < minC {
		minC = bf
	}

	v = uint8(maxC)
	delta := maxC - minC
	if maxC == 0 || delta == 0 {
		return 0, 0, v
	}
	s = uint8(255 * delta / maxC)

	var hue int
	switch maxC {
	case rf:
		hue = (60 * (gf - bf)) / delta
	case gf:
		hue = 120 + (60*(bf-rf))/delta
	default:
		hue = 240 + (60*(rf-gf))/delta
	}
	if hue < 0 {
		hue += 360
	}
	h = uint8(hue / 2)
	return h, s, v
}

// GoldenMask isolates pixels inside the configured HSV range and returns an
// inverted binary image: matching (golden text) pixels become black on a
// white background, the polarity Tesseract reads best.
func GoldenMask(img image.Image, lower, upper [3]uint8) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			h, s, v := rgbToHSV(uint8(r>>8), uint8(g>>8), uint8(b>>8))

			val := uint8(255)
			if h >= lower[0] && h <= upper[0] &&
				s >= lower[1] && s <= upper[1] &&
				v >= lower[2] && v <= upper[2] {
				val = 0
			}
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: val})
		}
	}
	return out
}

// BinaryThreshold converts to grayscale and thresholds: pixels brighter than
// cutoff become black (text), the rest white. Inverted polarity for OCR, same
// as GoldenMask.
func BinaryThreshold(img image.Image, cutoff uint8) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			val := uint8(255)
			if c.Y > cutoff {
				val = 0
			}
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: val})
		}
	}
	return out
}
