// config-check loads and validates one or more expanel config files and
// reports every problem found. The process exits with code 1 if any file
// fails validation so it can gate CI.
//
// Usage:
//
//	go run ./scripts/config-check expanel.yaml
//	go run ./scripts/config-check deploy/*.yaml
package main

import (
	"fmt"
	"os"

	"github.com/expanel/expanel"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: config-check <config-file> [...]")
		os.Exit(2)
	}

	failed := 0
	for _, path := range os.Args[1:] {
		cfg, err := expanel.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		if err := expanel.ValidateConfig(*cfg); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s (%d app(s), %d plugin(s))\n", path, len(cfg.Apps), len(cfg.Plugins))
	}

	if failed > 0 {
		os.Exit(1)
	}
}
