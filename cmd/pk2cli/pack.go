package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	times "gopkg.in/djherbis/times.v1"

	"github.com/silkroad-online/pk2/archive"
)

func packCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "pack",
		Usage: "build a fresh PK2 archive from a host directory tree",
		Flags: []cli.Flag{
			archiveFlag,
			keyFlag,
			&cli.StringFlag{Name: "src", Aliases: []string{"s"}, Required: true, Usage: "source directory to pack"},
		},
		Action: func(c *cli.Context) error {
			a, err := archive.Create(c.String("archive"), []byte(c.String("key")), archive.WithLogger(log))
			if err != nil {
				return err
			}
			defer a.Close()

			src := c.String("src")
			return filepath.WalkDir(src, func(hostPath string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				rel, err := filepath.Rel(src, hostPath)
				if err != nil {
					return err
				}
				return packFile(log, a, hostPath, filepath.ToSlash(rel))
			})
		},
	}
}

func packFile(log *logrus.Logger, a *archive.Archive, hostPath, archivePath string) error {
	in, err := os.Open(hostPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", hostPath, err)
	}
	defer in.Close()

	// times.Stat exposes a birth time on filesystems that track one; the
	// PK2 entry format has no separate birth-time field so this only feeds
	// the progress log, not the written entry.
	if ts, err := times.Stat(hostPath); err == nil && ts.HasBirthTime() {
		log.Debugf("%s: host birth time %s", archivePath, ts.BirthTime())
	}

	out, err := a.CreateFile("/" + archivePath)
	if err != nil {
		return fmt.Errorf("create %s in archive: %w", archivePath, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", archivePath, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Infof("packed %s", archivePath)
	return nil
}
