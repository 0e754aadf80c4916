package main

import (
	"os"

	"codeflow/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
