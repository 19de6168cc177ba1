/*
 * open.go, part of gtcout
 *
 * Copyright 2024 The gtcout Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package tokens

import (
	"bufio"
	"compress/lzw"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

//Compression formats understood by Open.
const (
	Plain = "plain"
	Zstd  = "zst"
	Gzip  = "gz"
	LZW   = "lzw"
)

//File is a Scanner reading from a file on disk, possibly compressed.
//It must be closed after use.
type File struct {
	*Scanner
	f   *os.File
	dec io.Closer //the decompressor, if any
}

//zstd.Decoder.Close does not return an error, so it is not an io.Closer.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

//FormatFromName deduces the compression format from the file extension.
//Files with unknown extensions are taken as plain text.
func FormatFromName(fname string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fname), "."))
	switch ext {
	case "zst", "zstd":
		return Zstd
	case "gz", "gzip":
		return Gzip
	case "lzw":
		return LZW
	}
	return Plain
}

//Open opens fname for token reading. If format is not given, or is empty, it is
//deduced from the file extension (.zst, .gz and .lzw are decompressed on the fly,
//anything else is read as is). An unknown format string is logged and the file
//is read as plain text.
func Open(fname string, format ...string) (*File, error) {
	fk := ""
	if len(format) > 0 {
		fk = strings.ToLower(format[0])
	}
	if fk == "" {
		fk = FormatFromName(fname)
	}
	F := new(File)
	var err error
	F.f, err = os.Open(fname)
	if err != nil {
		return nil, &Error{UnableToOpen, fname, []string{"os.Open", "Open"}, true, err}
	}
	reader := bufio.NewReader(F.f)
	var src io.Reader
	switch fk {
	case Plain:
		src = reader
	case Zstd, "zstd":
		d, err := zstd.NewReader(reader)
		if err != nil {
			F.f.Close()
			return nil, &Error{Compression, fname, []string{"zstd.NewReader", "Open"}, true, err}
		}
		F.dec = zstdCloser{d}
		src = d
	case Gzip:
		g, err := gzip.NewReader(reader)
		if err != nil {
			F.f.Close()
			return nil, &Error{Compression, fname, []string{"gzip.NewReader", "Open"}, true, err}
		}
		F.dec = g
		src = g
	case LZW:
		l := lzw.NewReader(reader, lzwOrder, lzwLitwidth)
		F.dec = l
		src = l
	default:
		slog.Warn("unsupported compression format, reading as plain text", "format", fk, "file", fname)
		src = reader
	}
	F.Scanner = NewScanner(src, fname)
	return F, nil
}

//Close closes the decompressor, if any, and the file.
func (F *File) Close() error {
	if F == nil || F.f == nil {
		return nil
	}
	if F.dec != nil {
		F.dec.Close()
	}
	err := F.f.Close()
	F.f = nil
	return err
}
