// Command sfsctl is the host program named in spec §6.3: it accepts a
// backing-file path and a mount point (plus a --debug flag that turns on
// go-fuse request logging; no other FUSE options are passed through), and
// also exposes the supplemental fsck/dump/format subcommands described in
// SPEC_FULL.md.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "sfsctl",
		Usage: "Mount, inspect, and format single-file block-device volumes",
		Commands: []*cli.Command{
			mountCommand,
			fsckCommand,
			dumpCommand,
			formatCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}
