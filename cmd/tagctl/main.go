// tagctl converts, inspects and categorizes tag vocabularies from the
// command line, offline or against a running server.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/cmd/tagctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
