// Command widgetkit stores, renders and serves declarative widget trees.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/widgetkit/cmd/widgetkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
