// Command rtreectl builds, queries and inspects serialized R-trees.
package main

import (
	"os"

	"github.com/peterstace/rtree/v2/internal/xlog"
)

func main() {
	// Flags may raise the level or add a log file once parsed.
	xlog.Init()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
