// ABOUTME: Entry point for gymlog CLI.
// ABOUTME: Invokes the root Cobra command and renders failures as notifications.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
