package ocr

import (
	"image"
	"image/color"
	"testing"
)

var (
	goldenLower = [3]uint8{15, 80, 150}
	goldenUpper = [3]uint8{45, 255, 255}
)

func TestGoldenMaskIsolatesGoldenText(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{R: 230, G: 180, B: 40, A: 255}) // golden glyph
	img.Set(1, 0, color.RGBA{R: 20, G: 20, B: 20, A: 255})   // dark background
	img.Set(2, 0, color.RGBA{R: 40, G: 90, B: 220, A: 255})  // blue UI element

	mask := GoldenMask(img, goldenLower, goldenUpper)

	if got := mask.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("golden pixel should be black (text), got %d", got)
	}
	if got := mask.GrayAt(1, 0).Y; got != 255 {
		t.Errorf("dark background should be white, got %d", got)
	}
	if got := mask.GrayAt(2, 0).Y; got != 255 {
		t.Errorf("blue pixel should be white, got %d", got)
	}
}

func TestGoldenMaskNormalizesOrigin(t *testing.T) {
	// Crops carry a non-zero origin; the mask must still start at (0, 0).
	img := image.NewRGBA(image.Rect(10, 20, 12, 21))
	img.Set(10, 20, color.RGBA{R: 230, G: 180, B: 40, A: 255})
	img.Set(11, 20, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	mask := GoldenMask(img, goldenLower, goldenUpper)

	if mask.Bounds().Min != (image.Point{}) {
		t.Fatalf("mask origin should be (0,0), got %v", mask.Bounds().Min)
	}
	if got := mask.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("translated golden pixel should be black, got %d", got)
	}
}

func TestBinaryThreshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 240, G: 240, B: 240, A: 255})
	img.Set(1, 0, color.RGBA{R: 30, G: 30, B: 30, A: 255})

	out := BinaryThreshold(img, 128)

	if got := out.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("bright pixel should be black (text), got %d", got)
	}
	if got := out.GrayAt(1, 0).Y; got != 255 {
		t.Errorf("dark pixel should be white, got %d", got)
	}
}
