// Package main is the entry point for keysmith.
package main

import (
	"context"
	"os"

	"github.com/unclesp1d3r/keysmith/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
