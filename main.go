package main

import (
	"os"

	"github.com/jdhoffa/vpp-sim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
