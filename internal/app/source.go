// Package app wires the crypto, codec, registry, and HTTP layers into the
// two control flows of spec §2: Send (sender publishes a drop) and Receive
// (operator accepts exactly one upload). The command-line parser, QR/tor
// presentation, and directory archiving are named in spec §1 as external
// collaborators specified only by interface — this package gives them the
// minimal concrete bodies needed to run, without elaborating on them.
package app

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PlaintextSource is a single byte stream ready for the codec, plus its
// length if known up front (a single regular file, or the tar.gz archive
// of a directory or several paths) or unknown (stdin).
type PlaintextSource struct {
	Reader    io.Reader
	KnownSize int64 // valid only if HasSize
	HasSize   bool
	Filename  string
	Mime      string
	Cleanup   func() // removes any temp file backing the source; always non-nil
}

// OpenSource resolves spec §6's `<PATH>...` into a single stream. "-" reads
// stdin under the documented filename/mime (spec §6). A single regular
// file streams directly with a known size. Anything else (a directory, or
// more than one path) is archived as tar.gz into a temp file first, since
// the codec needs a definite byte stream, not a tree — archiving itself is
// named in spec §1 as a black box we may implement simply.
func OpenSource(paths []string) (*PlaintextSource, error) {
	if len(paths) == 1 && paths[0] == "-" {
		return &PlaintextSource{
			Reader:   os.Stdin,
			HasSize:  false,
			Filename: "clipboard.txt",
			Mime:     "text/plain",
			Cleanup:  func() {},
		}, nil
	}

	if len(paths) == 1 {
		info, err := os.Stat(paths[0])
		if err != nil {
			return nil, fmt.Errorf("app: stat %s: %w", paths[0], err)
		}
		if !info.IsDir() {
			f, err := os.Open(paths[0])
			if err != nil {
				return nil, fmt.Errorf("app: open %s: %w", paths[0], err)
			}
			return &PlaintextSource{
				Reader:   f,
				KnownSize: info.Size(),
				HasSize:   true,
				Filename:  filepath.Base(paths[0]),
				Mime:      "application/octet-stream",
				Cleanup:   func() { f.Close() },
			}, nil
		}
	}

	return archivePaths(paths)
}

// archivePaths tars and gzips every path (file or directory, recursively)
// into a temp file, then rewinds it for reading with a known size so the
// sender can still use the known-size encode path.
func archivePaths(paths []string) (*PlaintextSource, error) {
	tmp, err := os.CreateTemp("", "deadrop-archive-*.tar.gz")
	if err != nil {
		return nil, fmt.Errorf("app: create archive temp file: %w", err)
	}

	gz := gzip.NewWriter(tmp)
	tw := tar.NewWriter(gz)

	for _, root := range paths {
		if err := addToTar(tw, root); err != nil {
			tw.Close()
			gz.Close()
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		gz.Close()
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := gz.Close(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}

	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}

	name := tmp.Name()
	return &PlaintextSource{
		Reader:    tmp,
		KnownSize: info.Size(),
		HasSize:   true,
		Filename:  "drop.tar.gz",
		Mime:      "application/gzip",
		Cleanup:   func() { tmp.Close(); os.Remove(name) },
	}, nil
}

func addToTar(tw *tar.Writer, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(filepath.Dir(root), path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}
