package main

import (
	"os"

	"github.com/fragmede/dacforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
