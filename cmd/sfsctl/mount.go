package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mirelfs/sfs/fuseops"
	"github.com/mirelfs/sfs/volume"
)

var mountCommand = &cli.Command{
	Name:      "mount",
	Usage:     "Mount a volume at a mount point",
	ArgsUsage: "IMAGE MOUNTPOINT",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "debug", Usage: "log every FUSE request"},
	},
	Action: runMount,
}

func runMount(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("usage: sfsctl mount IMAGE MOUNTPOINT")
	}
	imagePath := c.Args().Get(0)
	mountpoint := c.Args().Get(1)

	f, err := os.OpenFile(imagePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("opening %q: %w", imagePath, err)
	}
	defer f.Close()

	vol, err := volume.Open(f)
	if err != nil {
		return fmt.Errorf("opening volume: %w", err)
	}
	vol.SetLogger(log.Default())

	server, err := fuseops.Mount(vol, mountpoint, c.Bool("debug"))
	if err != nil {
		return fmt.Errorf("mounting at %q: %w", mountpoint, err)
	}

	log.Printf("mounted %s at %s", imagePath, mountpoint)
	server.Wait()
	return vol.Destroy()
}
