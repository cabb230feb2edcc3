package main

import (
	"os"

	"github.com/msto63/dcmd/cmd/dcmd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
