// Command botlang runs a conversational-bot script: it parses the script,
// starts a dialogue session against stdin/stdout, and exits non-zero on a
// fatal lex/parse error.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
