// Command pk2cli is a thin shell over package archive: extract, repack,
// and pack subcommands, plus progress logging. None of the archive
// format's core logic lives here (spec §1 scopes this out as a trivial
// external collaborator).
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/silkroad-online/pk2/archive"
)

func main() {
	log := logrus.New()

	app := &cli.App{
		Name:  "pk2cli",
		Usage: "inspect and repack PK2 archives",
		Commands: []*cli.Command{
			extractCommand(log),
			repackCommand(log),
			packCommand(log),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("pk2cli failed")
	}
}

var keyFlag = &cli.StringFlag{
	Name:    "key",
	Aliases: []string{"k"},
	Value:   archive.DefaultKey,
	Usage:   "Blowfish key for the archive's index blocks",
}

var archiveFlag = &cli.StringFlag{
	Name:     "archive",
	Aliases:  []string{"a"},
	Required: true,
	Usage:    "path to the PK2 archive",
}
