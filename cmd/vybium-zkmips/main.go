package main

import (
	"fmt"
	"os"

	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vybium-zkmips: ERROR:", err)
		os.Exit(1)
	}
}
