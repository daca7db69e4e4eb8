// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for pdcli.
//
// Usage:
//
//	go run . [flags]
//	DEVID=<developer id> ./pdcli [flags]
//
// This opens the interactive ParaDrop shell. See --help for options.
package main

import (
	"log"
	"os"

	"github.com/paradrop/pdcli/ui/cli"
)

// main is the entrypoint for the pdcli shell.
func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("pdcli error: %v", err)
		os.Exit(1)
	}
}
