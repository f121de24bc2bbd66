// Command artifacts-cred is a conda credential helper for Azure Artifacts
// feeds. It reads conda's request envelope from stdin and prints the feed
// password on stdout.
package main

import (
	"os"

	"github.com/jonwraymond/feedcred/cmd/artifacts-cred/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
