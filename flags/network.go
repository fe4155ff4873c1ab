package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags select the ledger the block files belong to.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Ledger network (mainnet|testnet|previewnet|fakenet)",
			Value: "mainnet",
		},
		cli.StringFlag{
			Name:  "prevhash",
			Usage: "Hex hash the first file must link to when no chain tip is stored",
		},
	}
}

// ImporterFlags tune the file worker pool.

func ImporterFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "preset",
			Usage: "Importer profile (default|fast|strict)",
			Value: "default",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "Number of block files decoded concurrently",
		},
		cli.IntFlag{
			Name:  "batch",
			Usage: "Number of block files decoded before they are linked and emitted",
		},
		cli.BoolFlag{
			Name:  "skip-imported",
			Usage: "Skip files at or below the stored chain tip instead of failing",
		},
		cli.StringFlag{
			Name:  "ext",
			Usage: "Block file extension used when a directory is given",
			Value: ".blk",
		},
		cli.BoolFlag{
			Name:  "progress",
			Usage: "Show a progress bar",
		},
	}
}
