package main

import (
	"os"

	"github.com/rony4d/go-ledger-mirror/cmd/mirror/launcher"
)

func main() {
	if err := launcher.Launch(os.Args); err != nil {
		os.Exit(1)
	}
}
