package main

import (
	"os"

	"github.com/rustyeddy/dogebot/cmd/dogebot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
