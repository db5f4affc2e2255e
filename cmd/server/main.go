// Command mindcanvas serves mind maps and drives headless editor sessions.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
