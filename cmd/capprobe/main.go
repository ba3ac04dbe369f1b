// Package main is the entrypoint for the capprobe CLI.
// With no arguments it runs every probe and exits non-zero on failure:
//
//	go build ./cmd/capprobe              # links and exercises every dependency
//	go build -tags nodeps ./cmd/capprobe # bypasses them and prints the literal
package main

import (
	"os"

	"github.com/canonica-labs/capprobe/internal/cli"
)

var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	os.Exit(cli.New().Execute())
}
