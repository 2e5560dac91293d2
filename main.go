// Package main is the entry point for the previewdiag application
package main

import (
	"github.com/ethpandaops/previewdiag/cmd"
)

func main() {
	cmd.Execute()
}
