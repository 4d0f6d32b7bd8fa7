package main

import (
	"archive/tar"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
	"github.com/urfave/cli/v2"

	"github.com/silkroad-online/pk2/archive"
)

func repackCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "repack",
		Usage: "rebuild a PK2 archive into a fresh, compacted file and optionally bundle a compressed copy",
		Flags: []cli.Flag{
			archiveFlag,
			keyFlag,
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "destination archive path"},
			&cli.StringFlag{Name: "lz4-bundle", Usage: "also write an lz4-compressed tar of the archive contents, for fast local mirrors"},
			&cli.StringFlag{Name: "xz-bundle", Usage: "also write an xz-compressed tar of the archive contents, for dense distribution mirrors"},
		},
		Action: func(c *cli.Context) error {
			runID, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("generate run id: %w", err)
			}
			rlog := log.WithField("run", runID.String())
			rlog.Info("starting repack")

			src, err := archive.Open(c.String("archive"), []byte(c.String("key")), archive.WithLogger(log))
			if err != nil {
				return err
			}
			defer src.Close()

			dst, err := archive.Create(c.String("out"), []byte(c.String("key")), archive.WithLogger(log))
			if err != nil {
				return err
			}
			defer dst.Close()

			srcRoot, err := src.OpenDirectory("/")
			if err != nil {
				return err
			}
			if err := repackDir(rlog, srcRoot, dst, ""); err != nil {
				return err
			}

			if bundle := c.String("lz4-bundle"); bundle != "" {
				if err := writeBundle(rlog, srcRoot, bundle, lz4Writer); err != nil {
					return err
				}
			}
			if bundle := c.String("xz-bundle"); bundle != "" {
				if err := writeBundle(rlog, srcRoot, bundle, xzWriter); err != nil {
					return err
				}
			}
			rlog.Info("repack complete")
			return nil
		},
	}
}

func repackDir(log *logrus.Entry, dir *archive.Directory, dst *archive.Archive, prefix string) error {
	entries, err := dir.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		archivePath := prefix + "/" + e.Name
		if sub, ok := e.AsDirectory(); ok {
			if err := repackDir(log, sub, dst, archivePath); err != nil {
				return err
			}
			continue
		}
		f, _ := e.AsFile()
		out, err := dst.CreateFile(archivePath)
		if err != nil {
			return fmt.Errorf("create %s: %w", archivePath, err)
		}
		if _, err := io.Copy(out, f); err != nil {
			out.Close()
			return fmt.Errorf("copy %s: %w", archivePath, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
		log.Debugf("repacked %s", archivePath)
	}
	return nil
}

// compressWriter adapts lz4 and xz's differing constructors to one shape so
// writeBundle can drive either from the same tar-walk.
type compressWriter func(io.Writer) (io.WriteCloser, error)

func lz4Writer(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }

func xzWriter(w io.Writer) (io.WriteCloser, error) {
	zw, err := xz.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return zw, nil
}

func writeBundle(log *logrus.Entry, root *archive.Directory, path string, newWriter compressWriter) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle %s: %w", path, err)
	}
	defer out.Close()

	cw, err := newWriter(out)
	if err != nil {
		return fmt.Errorf("open compressor for %s: %w", path, err)
	}
	tw := tar.NewWriter(cw)

	if err := bundleDir(root, tw, ""); err != nil {
		tw.Close()
		cw.Close()
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	log.Infof("wrote bundle %s", path)
	return nil
}

func bundleDir(dir *archive.Directory, tw *tar.Writer, prefix string) error {
	entries, err := dir.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := prefix + e.Name
		if sub, ok := e.AsDirectory(); ok {
			if err := bundleDir(sub, tw, name+"/"); err != nil {
				return err
			}
			continue
		}
		f, _ := e.AsFile()
		size, err := f.Size()
		if err != nil {
			return err
		}
		if err := tw.WriteHeader(&tar.Header{Name: name, Size: size, Mode: 0o644}); err != nil {
			return err
		}
		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("bundle %s: %w", name, err)
		}
	}
	return nil
}
