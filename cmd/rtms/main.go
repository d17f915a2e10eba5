package main

import (
	"os"

	"github.com/raptorfin/rtms/cmd/rtms/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
