// Command tabletop serves the D&D catalog and event planning API and carries
// the operational commands around it: migrate, seed and token.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
