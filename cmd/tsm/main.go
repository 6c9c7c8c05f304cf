package main

import (
	"os"

	"github.com/example/threestatement/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
