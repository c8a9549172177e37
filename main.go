package main

import (
	"os"

	"github.com/aanujkhurana/backlog-reader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
