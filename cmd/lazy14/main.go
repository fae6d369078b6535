package main

import (
	"os"

	"lazy14/cmd/lazy14/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
