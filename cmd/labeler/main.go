// Package main is the entry point for the labeler CLI.
package main

import (
	"github.com/justrnr500/prlabeler/internal/cmd"
)

func main() {
	cmd.Execute()
}
