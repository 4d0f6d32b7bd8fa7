package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/xattr"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/silkroad-online/pk2/archive"
)

// pk2EntryTimeXattr is the xattr name extracted files are stamped with,
// carrying the archive entry's stored modify time as an RFC 3339 string
// (original_source propagates this as exif-like sidecar data; here it
// rides along as a real xattr instead). The pack command does not read it
// back.
const pk2EntryTimeXattr = "user.pk2.modify_time"

func extractCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "extract every file from a PK2 archive onto the host filesystem",
		Flags: []cli.Flag{
			archiveFlag,
			keyFlag,
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "destination directory"},
		},
		Action: func(c *cli.Context) error {
			a, err := archive.Open(c.String("archive"), []byte(c.String("key")), archive.WithLogger(log))
			if err != nil {
				return err
			}
			defer a.Close()

			root, err := a.OpenDirectory("/")
			if err != nil {
				return err
			}
			return extractDir(log, root, c.String("out"))
		},
	}
}

func extractDir(log *logrus.Logger, dir *archive.Directory, destDir string) error {
	entries, err := dir.Entries()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", destDir, err)
	}

	for _, e := range entries {
		target := filepath.Join(destDir, e.Name)
		if sub, ok := e.AsDirectory(); ok {
			if err := extractDir(log, sub, target); err != nil {
				return err
			}
			continue
		}
		f, _ := e.AsFile()
		if err := extractFile(log, f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(log *logrus.Logger, f *archive.File, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, f); err != nil {
		return fmt.Errorf("extract %s: %w", target, err)
	}

	if mtime, err := f.ModTime(); err == nil {
		stamp := mtime.UTC().Format(time.RFC3339Nano)
		if err := xattr.Set(target, pk2EntryTimeXattr, []byte(stamp)); err != nil {
			log.WithError(err).Debugf("could not set xattr on %s", target)
		}
	}
	log.Infof("extracted %s", target)
	return nil
}
