// Package deliver hands transcribed text to the user: either onto the
// clipboard or typed at the cursor via a simulated paste.
package deliver

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
	"github.com/rs/zerolog/log"
)

// Output delivers text. With useClipboard the text is copied and left on the
// clipboard; otherwise it is pasted at the cursor and the previous clipboard
// contents are restored afterwards.
func Output(text string, useClipboard bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if useClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		log.Debug().Int("chars", len(text)).Msg("copied to clipboard")
		return nil
	}
	return pasteAtCursor(text)
}

// pasteAtCursor routes the text through the clipboard and sends Ctrl+V, then
// restores what was on the clipboard before.
func pasteAtCursor(text string) error {
	prev, _ := clipboard.ReadAll()

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("staging text on clipboard: %w", err)
	}

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("initializing key injection: %w", err)
	}
	// The uinput device needs a moment before synthetic events register.
	time.Sleep(250 * time.Millisecond)

	kb.SetKeys(keybd_event.VK_V)
	kb.HasCTRL(true)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("sending paste keystroke: %w", err)
	}
	log.Debug().Int("chars", len(text)).Msg("typed at cursor")

	if prev != "" {
		// Wait for the paste to land before restoring the clipboard.
		time.Sleep(600 * time.Millisecond)
		if err := clipboard.WriteAll(prev); err != nil {
			log.Debug().Err(err).Msg("restoring clipboard failed")
		}
	}
	return nil
}
