package winproc

import "golang.org/x/sys/windows"

var (
	USER32              = windows.NewLazySystemDLL("user32.dll")
	PrintWindow         = USER32.NewProc("PrintWindow")
	GetDC               = USER32.NewProc("GetDC")
	ReleaseDC           = USER32.NewProc("ReleaseDC")
	IsIconic            = USER32.NewProc("IsIconic")
	SetProcessDpiAware  = USER32.NewProc("SetProcessDPIAware")
	GetClientRect       = USER32.NewProc("GetClientRect")
	GetWindowRect       = USER32.NewProc("GetWindowRect")
	ClientToScreen      = USER32.NewProc("ClientToScreen")
	EnumWindows         = USER32.NewProc("EnumWindows")
	IsWindow            = USER32.NewProc("IsWindow")
	IsWindowVisible     = USER32.NewProc("IsWindowVisible")
	GetWindowText       = USER32.NewProc("GetWindowTextW")
	GetWindowTextLength = USER32.NewProc("GetWindowTextLengthW")
	SetForegroundWindow = USER32.NewProc("SetForegroundWindow")
	ShowWindow          = USER32.NewProc("ShowWindow")
	KeybdEvent          = USER32.NewProc("keybd_event")
)
