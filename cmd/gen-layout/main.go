/*
 * gen-layout computes concentric force-directed layouts of category graphs,
 * see 'gen-layout --help'.
 */
package main

import (
	"os"

	"github.com/suxatcode/concentric-layout/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
