package main

import (
	"os"

	"github.com/example/sptracker/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
