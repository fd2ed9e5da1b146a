// Package main provides the nftmeta CLI, a host for the decoder library:
// registry lookup, registry synthesis, field decoding and extension
// resolution against a node.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
