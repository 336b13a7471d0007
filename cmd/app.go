// Package cmd implements the CLI application to manage a transaction store.
package cmd

import (
	"flag"
	"os"

	"github.com/ewanmcc/lotkeeper"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package calls Register() to install the subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&undoCmd{}, "transactions")

	c.Register(&holdingsCmd{}, "reports")
	c.Register(&salesCmd{}, "reports")
	c.Register(&sharesCmd{}, "reports")
	c.Register(&reportCmd{}, "reports")

	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storeFile = flag.String("f", envDefault("LK_STORE_FILE", "transactions.json"),
	"Path to the transaction store file (.json or .csv)")

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openReconciler loads and replays the app transaction store.
func openReconciler() (*lotkeeper.Reconciler, error) {
	return lotkeeper.NewReconciler(*storeFile)
}
