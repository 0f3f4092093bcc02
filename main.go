package main

import (
	"os"

	"github.com/mskrss/background-pingu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
