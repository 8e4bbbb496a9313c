// Command contractctl inspects the API contract: it lists routes, exports
// entity schemas and checks recorded responses against their declaration.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
