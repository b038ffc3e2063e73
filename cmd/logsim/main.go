// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command logsim compiles and runs logic circuit descriptions.
//
package main

import (
	"log"
	"os"

	"github.com/db47h/logsim/internal/translate"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("logsim: ")
	if err := rootCmd.Execute(); err != nil {
		log.Print(translate.Error(err))
		os.Exit(1)
	}
}
