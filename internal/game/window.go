package game

import (
	"errors"
	"strings"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"github.com/lrivero/muvisor/internal/game/winproc"
)

// ErrWindowNotFound is returned whenever the game window cannot be located or
// has died since the last liveness check.
var ErrWindowNotFound = errors.New("game window not found")

const vkMenu = 0x12 // ALT

// Window tracks the MU client window: its handle and the screen position of
// the client area, refreshed before every capture or click.
type Window struct {
	Title string
	HWND  win.HWND

	WindowLeftX   int
	WindowTopY    int
	GameAreaSizeX int
	GameAreaSizeY int
}

func NewWindow(title string) *Window {
	return &Window{Title: title}
}

// enumSearch is shared state for the EnumWindows callback. syscall.NewCallback
// allocates a trampoline that is never released, so a single package-level
// callback is reused for every search.
var (
	enumMu     sync.Mutex
	enumSearch struct {
		title string
		exact bool
		found win.HWND
	}
	enumCallback = syscall.NewCallback(func(hwnd, _ uintptr) uintptr {
		visible, _, _ := winproc.IsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1
		}
		title := windowText(win.HWND(hwnd))
		var match bool
		if enumSearch.exact {
			match = strings.EqualFold(title, enumSearch.title)
		} else {
			match = strings.Contains(strings.ToLower(title), strings.ToLower(enumSearch.title))
		}
		if match {
			enumSearch.found = win.HWND(hwnd)
			return 0 // stop enumeration
		}
		return 1
	})
)

// FindWindow returns the handle of the first visible top-level window whose
// title matches. exact selects full-title comparison over substring search.
func FindWindow(title string, exact bool) (win.HWND, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumSearch.title = title
	enumSearch.exact = exact
	enumSearch.found = 0
	winproc.EnumWindows.Call(enumCallback, 0)

	if enumSearch.found == 0 {
		return 0, ErrWindowNotFound
	}
	return enumSearch.found, nil
}

func windowText(hwnd win.HWND) string {
	length, _, _ := winproc.GetWindowTextLength.Call(uintptr(hwnd))
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	winproc.GetWindowText.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), length+1)
	return syscall.UTF16ToString(buf)
}

// Find locates the game window by exact title and stores the handle.
func (w *Window) Find() error {
	hwnd, err := FindWindow(w.Title, true)
	if err != nil {
		w.HWND = 0
		return err
	}
	w.HWND = hwnd
	w.UpdatePosition()
	return nil
}

// IsAlive reports whether the stored handle still refers to a live, visible
// window. A dead handle is cleared so the next Find starts fresh.
func (w *Window) IsAlive() bool {
	if w.HWND == 0 {
		return false
	}
	alive, _, _ := winproc.IsWindow.Call(uintptr(w.HWND))
	if alive == 0 {
		w.HWND = 0
		return false
	}
	visible, _, _ := winproc.IsWindowVisible.Call(uintptr(w.HWND))
	if visible == 0 {
		w.HWND = 0
		return false
	}
	return true
}

// Focus brings the game window to the foreground. A transient ALT press
// bypasses the foreground-lock restriction Windows applies to background
// processes calling SetForegroundWindow.
func (w *Window) Focus() error {
	if w.HWND == 0 {
		return ErrWindowNotFound
	}

	winproc.KeybdEvent.Call(vkMenu, 0, 0, 0)
	win.ShowWindow(w.HWND, win.SW_RESTORE)
	win.SetForegroundWindow(w.HWND)
	winproc.KeybdEvent.Call(vkMenu, 0, 2, 0) // KEYEVENTF_KEYUP

	time.Sleep(150 * time.Millisecond)
	return nil
}

// UpdatePosition refreshes the cached client-area origin and size.
func (w *Window) UpdatePosition() {
	point := win.POINT{}
	win.ClientToScreen(w.HWND, &point)
	rect := win.RECT{}
	win.GetClientRect(w.HWND, &rect)

	w.WindowLeftX = int(point.X)
	w.WindowTopY = int(point.Y)
	w.GameAreaSizeX = int(rect.Right - rect.Left)
	w.GameAreaSizeY = int(rect.Bottom - rect.Top)
}

// Center returns the middle of the client area in window-relative pixels.
func (w *Window) Center() (int, int) {
	w.UpdatePosition()
	return w.GameAreaSizeX / 2, w.GameAreaSizeY / 2
}

// TitleText returns the current window title, which the MU client keeps
// updated with the character level.
func (w *Window) TitleText() string {
	if w.HWND == 0 {
		return ""
	}
	return windowText(w.HWND)
}
