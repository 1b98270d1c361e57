// rateconv embeds R, loads FinancialMath and converts an interest rate
// between compounding conventions with rate.conv.
//
// With no arguments it converts 6.75% convertible monthly to an effective
// annual rate and prints one line:
//
//	Result: { true, 0.069628 }
package main

import (
	"fmt"
	"os"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"

	// defaultRHome is exported as R_HOME before the runtime starts, e.g.
	// -ldflags "-X main.defaultRHome=/usr/lib/R".
	defaultRHome = ""
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
