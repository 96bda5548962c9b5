package main

import (
	"fmt"
	"os"
)

func main() {
	Execute()
}

// fatal reports a failed step on stderr and exits non-zero.
func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "marl: %s: %v\n", msg, err)
	os.Exit(1)
}
