package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// SinkFlags configure where synthesized records go.

func SinkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "db.dsn",
			Usage: "Postgres connection string; records are only logged when empty",
		},
		cli.BoolFlag{
			Name:  "db.migrate",
			Usage: "Create the record tables before importing",
		},
	}
}
