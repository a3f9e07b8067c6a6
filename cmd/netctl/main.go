package main

import (
	"os"

	"github.com/vyvo/netblank/cmd/netctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
