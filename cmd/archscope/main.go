// Command archscope analyzes a single construction photo from the shell
// and prints the sectioned report.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
