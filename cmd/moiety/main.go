// Command moiety inspects the resources of Riven-style Mohawk archives
// through libvaht.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openLibrary).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
