package game

import (
	"math/rand"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/lxn/win"

	"github.com/lrivero/muvisor/internal/config"
)

type MouseButton uint

const (
	LeftButton   MouseButton = win.MK_LBUTTON
	RightButton  MouseButton = win.MK_RBUTTON
	MiddleButton MouseButton = win.MK_MBUTTON
)

const (
	buttonPressMinTime = 150 // ms
	buttonPressMaxTime = 250
)

// HID injects synthetic input into the game window. Mouse actions are posted
// as window messages so they land on the client regardless of cursor
// ownership; keyboard and clipboard go through the OS (robotgo) because the
// client ignores synthetic WM_CHAR for chat input.
type HID struct {
	w      *Window
	timing config.TimingCfg
}

func NewHID(w *Window, timing config.TimingCfg) *HID {
	return &HID{w: w, timing: timing}
}

func buttonMessages(btn MouseButton) (down, up uint32) {
	switch btn {
	case RightButton:
		return win.WM_RBUTTONDOWN, win.WM_RBUTTONUP
	case MiddleButton:
		return win.WM_MBUTTONDOWN, win.WM_MBUTTONUP
	default:
		return win.WM_LBUTTONDOWN, win.WM_LBUTTONUP
	}
}

func calculateLparam(x, y int) uintptr {
	return uintptr(y<<16 | x)
}

// Click presses and releases a mouse button at the given client-area point,
// holding it down for a short randomized interval.
func (hid *HID) Click(btn MouseButton, x, y int) {
	lParam := calculateLparam(x, y)
	down, up := buttonMessages(btn)

	win.PostMessage(hid.w.HWND, win.WM_MOUSEMOVE, 0, lParam)
	win.SendMessage(hid.w.HWND, down, uintptr(btn), lParam)
	holdTime := rand.Intn(buttonPressMaxTime-buttonPressMinTime) + buttonPressMinTime
	time.Sleep(time.Duration(holdTime) * time.Millisecond)
	win.SendMessage(hid.w.HWND, up, 0, lParam)
}

// PressButton holds a mouse button down at the given point until
// ReleaseButton is called. Used for the sustained farming action.
func (hid *HID) PressButton(btn MouseButton, x, y int) {
	lParam := calculateLparam(x, y)
	down, _ := buttonMessages(btn)
	win.PostMessage(hid.w.HWND, win.WM_MOUSEMOVE, 0, lParam)
	win.SendMessage(hid.w.HWND, down, uintptr(btn), lParam)
}

func (hid *HID) ReleaseButton(btn MouseButton, x, y int) {
	lParam := calculateLparam(x, y)
	_, up := buttonMessages(btn)
	win.SendMessage(hid.w.HWND, up, 0, lParam)
}

// ClickAt is a plain left click at a client-area point.
func (hid *HID) ClickAt(x, y int) {
	hid.Click(LeftButton, x, y)
}

// Center returns the middle of the client area; movement clicks are offset
// from here.
func (hid *HID) Center() (int, int) {
	return hid.w.Center()
}

// KeyTap sends a global key press (optionally with modifiers) after making
// sure the game window has the foreground.
func (hid *HID) KeyTap(key string, modifiers ...string) error {
	if err := hid.w.Focus(); err != nil {
		return err
	}
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}
