package main

import (
	"os"

	"github.com/p1va/lspbridge/internal/bridge/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
