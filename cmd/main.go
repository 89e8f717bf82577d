package main

import (
	"os"

	"github.com/isometry-app/isometry/cmd/isometry"
)

func main() {
	if err := isometry.Execute(); err != nil {
		os.Exit(1)
	}
}
