// Package translate formats user visible messages for the rv32 packages
// in the language of the current locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// FALLBACK_LOCALE is used when the host reports no locale at all.
const FALLBACK_LOCALE = "en-US"

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("rv32: locale: %v", err)
	}

	printer = newPrinter(locales)
}

// newPrinter selects the best matching printer for a locale preference list.
func newPrinter(locales []string) *message.Printer {
	if len(locales) == 0 {
		locales = []string{FALLBACK_LOCALE}
	}

	return message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
