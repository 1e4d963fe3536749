package output

import (
	"fmt"
	"os"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"
)

const notifyTitle = "Voice Input"

// Notify sends a desktop notification, falling back to stderr when the
// notification service is unavailable.
func Notify(message string) {
	if err := beeep.Notify(notifyTitle, message, ""); err != nil {
		log.Debug().Err(err).Msg("desktop notification failed")
		fmt.Fprintf(os.Stderr, "[whisp-away] %s: %s\n", notifyTitle, message)
	}
}

// Notifyf is Notify with formatting.
func Notifyf(format string, args ...any) {
	Notify(fmt.Sprintf(format, args...))
}
