// Package main is the single-binary entrypoint for VitalQuest.
package main

import "github.com/vitalquest/vitalquest/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
