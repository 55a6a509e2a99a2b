// Package main provides the datastore CLI, a maintenance tool for the
// bakehouse documents: seed them, print them, or copy them between backends.
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
