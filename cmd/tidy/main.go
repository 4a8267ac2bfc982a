// Package main is the entry point for the tidy CLI.
package main

import (
	"os"

	"github.com/cybergodev/tidy/cmd/tidy/commands"
)

func main() {
	os.Exit(commands.Execute())
}
