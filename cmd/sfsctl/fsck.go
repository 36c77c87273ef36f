package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mirelfs/sfs/volume"
)

var fsckCommand = &cli.Command{
	Name:      "fsck",
	Usage:     "Check a volume's consistency invariants",
	ArgsUsage: "IMAGE",
	Action:    runFsck,
}

func runFsck(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: sfsctl fsck IMAGE")
	}

	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer f.Close()

	vol, err := volume.Open(f)
	if err != nil {
		return fmt.Errorf("opening volume: %w", err)
	}

	if err := vol.CheckConsistency(); err != nil {
		fmt.Fprintln(os.Stderr, "inconsistent volume:")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("volume is consistent")
	return nil
}
