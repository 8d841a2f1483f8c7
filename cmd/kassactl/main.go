package main

import (
	"fmt"
	"os"

	cli "github.com/kassakit/kassakit/cmd/kassactl/internal"
)

func main() {
	rootCmd := cli.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
