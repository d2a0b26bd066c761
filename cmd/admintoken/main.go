// Command admintoken mints and inspects bearer tokens for the domain factor
// admin settings endpoints, using the same ADMIN_JWT_* environment as the
// server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
