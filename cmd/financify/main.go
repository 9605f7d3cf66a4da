package main

import (
	"os"

	"github.com/jagodin/financify-public/cmd/financify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
