package game

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/lrivero/muvisor/internal/utils"
)

// SendChatCommand opens the chat line, pastes text from the clipboard and
// submits it. Pasting via Ctrl+V instead of typing keeps commands intact:
// per-character key injection drops modifiers inside DirectX clients, which
// turns "/addstr 100" into inventory toggles.
func (hid *HID) SendChatCommand(text string) error {
	if err := hid.w.Focus(); err != nil {
		return err
	}

	if err := robotgo.KeyTap("enter"); err != nil {
		return fmt.Errorf("opening chat: %w", err)
	}
	utils.Sleep(hid.timing.ChatOpenMs)

	// Write the clipboard right before pasting so nothing overwrites it.
	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	utils.Sleep(100)

	if err := robotgo.KeyTap("v", "ctrl"); err != nil {
		return fmt.Errorf("pasting command: %w", err)
	}
	utils.Sleep(300)

	if err := robotgo.KeyTap("enter"); err != nil {
		return fmt.Errorf("submitting command: %w", err)
	}
	utils.Sleep(hid.timing.CommandSendMs)
	return nil
}
