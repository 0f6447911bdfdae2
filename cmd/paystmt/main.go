package main

import (
	"os"

	"github.com/paystmt-dev/paystmt/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
