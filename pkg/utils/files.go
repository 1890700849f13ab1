package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// LoadFile loads the given file and performs decompression if necessary.
// Plain ROM images (.gb, extensionless) are returned as-is; .gz, .zip and
// .7z archives are unpacked and the first entry returned.
func LoadFile(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var decoder io.Reader
	switch ext := filepath.Ext(filename); ext {
	case ".gz":
		decoder, err = gzip.NewReader(bytes.NewReader(data))
	case ".zip":
		zipReader, zErr := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if zErr != nil {
			return nil, zErr
		}
		if len(zipReader.File) == 0 {
			return data, nil
		}
		decoder, err = zipReader.File[0].Open()
	case ".7z":
		r, zErr := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if zErr != nil {
			return nil, zErr
		}
		if len(r.File) == 0 {
			return data, nil
		}
		decoder, err = r.File[0].Open()
	default:
		return data, nil
	}
	if err != nil {
		return nil, err
	}

	return io.ReadAll(decoder)
}
