// domcol - dominant colour extraction
//
// domcol finds the most visually dominant colours of an image, each snapped
// to a colour that actually occurs in it.
package main

import (
	"os"

	"github.com/jmylchreest/domcol/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
