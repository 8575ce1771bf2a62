package game

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/kbinani/screenshot"

	"github.com/lrivero/muvisor/internal/data"
	"github.com/lrivero/muvisor/internal/game/winproc"
)

type bmpInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct{ Header bmpInfoHeader }

// CaptureRegion grabs a rectangle of the game client area as an RGBA image.
// PrintWindow is preferred because it works with an occluded window; some
// render paths hand back an all-black frame, in which case the window is
// focused and the region is grabbed straight off the screen instead.
func (w *Window) CaptureRegion(region data.Region) (*image.RGBA, error) {
	if w.HWND == 0 {
		return nil, ErrWindowNotFound
	}
	w.UpdatePosition()

	if full := w.captureClient(); full != nil {
		sub := cropRegion(full, region)
		if !isBlank(sub) {
			return sub, nil
		}
	}

	// DirectX exclusive-mode windows defeat PrintWindow; fall back to a
	// desktop grab, which needs the window frontmost.
	if err := w.Focus(); err != nil {
		return nil, err
	}
	w.UpdatePosition()
	rect := image.Rect(
		w.WindowLeftX+region.X,
		w.WindowTopY+region.Y,
		w.WindowLeftX+region.X+region.W,
		w.WindowTopY+region.Y+region.H,
	)
	shot, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("screen capture fallback: %w", err)
	}
	return shot, nil
}

// CaptureClientArea grabs the entire client area, used when a notification
// should carry a frame of what the bot was looking at.
func (w *Window) CaptureClientArea() (image.Image, error) {
	w.UpdatePosition()
	return w.CaptureRegion(data.Region{W: w.GameAreaSizeX, H: w.GameAreaSizeY})
}

// captureClient renders the whole client area into a top-down 32bpp DIB via
// PrintWindow and wraps it as an RGBA image. Returns nil on any GDI failure.
func (w *Window) captureClient() *image.RGBA {
	width, height := w.GameAreaSizeX, w.GameAreaSizeY
	if width <= 0 || height <= 0 {
		return nil
	}

	hdcScreen, _, _ := winproc.GetDC.Call(0)
	if hdcScreen == 0 {
		return nil
	}
	defer winproc.ReleaseDC.Call(0, hdcScreen)

	hdcMem, _, _ := winproc.CreateCompatibleDC.Call(hdcScreen)
	if hdcMem == 0 {
		return nil
	}
	defer winproc.DeleteDC.Call(hdcMem)

	bi := bitmapInfo{Header: bmpInfoHeader{
		BiSize:     40,
		BiWidth:    int32(width),
		BiHeight:   -int32(height),
		BiPlanes:   1,
		BiBitCount: 32,
	}}
	var bitsPtr uintptr
	hbm, _, _ := winproc.CreateDIBSection.Call(hdcScreen, uintptr(unsafe.Pointer(&bi)), 0, uintptr(unsafe.Pointer(&bitsPtr)), 0, 0)
	if hbm == 0 || bitsPtr == 0 {
		return nil
	}
	defer winproc.DeleteObject.Call(hbm)
	winproc.SelectObject.Call(hdcMem, hbm)

	// PW_CLIENTONLY | PW_RENDERFULLCONTENT
	winproc.PrintWindow.Call(uintptr(w.HWND), hdcMem, 3)
	winproc.GdiFlush.Call()

	n := width * height * 4
	src := unsafe.Slice((*byte)(unsafe.Pointer(bitsPtr)), n)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, src)
	// DIB is BGRA; swap to RGBA.
	for i := 0; i < n; i += 4 {
		img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
	}
	return img
}

func cropRegion(img *image.RGBA, region data.Region) *image.RGBA {
	r := image.Rect(region.X, region.Y, region.X+region.W, region.Y+region.H).Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		srcOff := (r.Min.Y+y)*img.Stride + r.Min.X*4
		dstOff := y * out.Stride
		copy(out.Pix[dstOff:dstOff+r.Dx()*4], img.Pix[srcOff:srcOff+r.Dx()*4])
	}
	return out
}

func isBlank(img *image.RGBA) bool {
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			return false
		}
	}
	return true
}
