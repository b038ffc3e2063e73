// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package translate formats user facing messages (diagnostics, error strings)
// for the user's locale.
//
package translate

import (
	"log"
	"strings"
	"sync"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	once    sync.Once
	printer *message.Printer
)

func initPrinter() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("logsim: locale: %v", err)
	}
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}
	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage forces the language used by From. It is mostly useful in tests
// and for command line overrides.
//
func SetLanguage(tag language.Tag) {
	once.Do(func() {})
	printer = message.NewPrinter(tag)
}

// From formats an en-US Sprintf style format for the current locale.
//
func From(key message.Reference, args ...interface{}) string {
	once.Do(initPrinter)
	return printer.Sprintf(key, args...)
}

// Error returns the message of err for the current locale. Error messages are
// plain text: they are used as message keys, never as formats.
//
func Error(err error) string {
	once.Do(initPrinter)
	msg := err.Error()
	return printer.Sprintf(message.Key(msg, strings.ReplaceAll(msg, "%", "%%")))
}
