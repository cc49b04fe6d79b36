package main

import (
	"fmt"
	"os"

	"github.com/lextri/tritime/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tritime: %v\n", err)
		os.Exit(1)
	}
}
