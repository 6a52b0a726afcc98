// File: cmd/hioload-compat/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// hioload-compat serves "Hello World!" on 127.0.0.1:3000 by default.
//
// Usage:
//
//	hioload-compat [--addr host:port] [--workers n] [--engine builtin|nethttp] [--metrics]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/momentics/hioload-compat/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
