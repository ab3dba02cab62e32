package main

import (
	"os"

	"github.com/dmitrymomot/carenotify/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
