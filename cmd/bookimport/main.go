// Command bookimport validates and sends book spreadsheets from the shell,
// running the same pipeline as the web console.
package main

import (
	"os"

	"github.com/JonMunkholm/bookimport/internal/config"
)

func main() {
	_, _ = config.LoadEnvFiles(".env", ".env.local")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
