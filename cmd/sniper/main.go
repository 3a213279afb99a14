package main

import (
	"fmt"
	"os"

	"github.com/roach88/sniper/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sniper:", err)
		os.Exit(1)
	}
}
