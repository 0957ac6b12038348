package main

import (
	"os"

	"merovian.backend/cmd/merovian/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
