package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mirelfs/sfs/block"
	"github.com/mirelfs/sfs/layout"
	"github.com/mirelfs/sfs/volume"
)

var formatCommand = &cli.Command{
	Name:      "format",
	Usage:     "Create or wipe a backing file and write a fresh volume",
	ArgsUsage: "IMAGE",
	Action:    runFormat,
}

func runFormat(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: sfsctl format IMAGE")
	}
	imagePath := c.Args().Get(0)

	f, err := os.OpenFile(imagePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %q: %w", imagePath, err)
	}
	defer f.Close()

	size := int64(layout.DiskEnd) * block.Size
	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("sizing %q to %d bytes: %w", imagePath, size, err)
	}

	vol, err := volume.Open(f)
	if err != nil {
		return fmt.Errorf("formatting volume: %w", err)
	}

	fmt.Printf("formatted %s: %d blocks, %d bytes\n", imagePath, layout.DiskEnd, size)
	return vol.Destroy()
}
