// Command svgrender renders SVG files to PNG or PDF, and
// inspects the drawing commands they produce.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
