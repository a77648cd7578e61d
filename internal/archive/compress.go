// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz/lzma"

	"zipbundler/internal/config"
)

// Zip compression method IDs beyond the two archive/zip knows natively,
// per the zip APPNOTE.
const (
	zipMethodBzip2 uint16 = 12
	zipMethodLZMA  uint16 = 14
)

// zipMethod maps the closed config enum onto zip method IDs.
func zipMethod(m config.CompressionMethod) uint16 {
	switch m {
	case config.CompressionDeflate:
		return zip.Deflate
	case config.CompressionBzip2:
		return zipMethodBzip2
	case config.CompressionLZMA:
		return zipMethodLZMA
	default:
		return zip.Store
	}
}

// registerCompressors installs the writers for every supported method on
// one zip.Writer. level applies to deflate and bzip2; lzma ignores it.
func registerCompressors(zw *zip.Writer, level *int) {
	deflateLevel := flate.DefaultCompression
	if level != nil {
		deflateLevel = *level
	}
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, deflateLevel)
	})

	bzipLevel := bzip2.DefaultCompression
	if level != nil && *level >= bzip2.BestSpeed && *level <= bzip2.BestCompression {
		bzipLevel = *level
	}
	zw.RegisterCompressor(zipMethodBzip2, func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzipLevel})
	})

	zw.RegisterCompressor(zipMethodLZMA, func(w io.Writer) (io.WriteCloser, error) {
		return newZipLZMAWriter(w)
	})
}

// RegisterDecompressors installs readers for bzip2 and LZMA entries on a
// zip.Reader, so archives built with any supported method can be opened.
// Stored and deflate are handled by archive/zip natively.
func RegisterDecompressors(zr *zip.Reader) {
	zr.RegisterDecompressor(zipMethodBzip2, func(r io.Reader) io.ReadCloser {
		br, err := bzip2.NewReader(r, nil)
		if err != nil {
			return &errReadCloser{err: err}
		}
		return br
	})
	zr.RegisterDecompressor(zipMethodLZMA, newZipLZMAReader)
}

// newZipLZMAReader undoes the zip LZMA framing: it strips the version and
// properties-length prefix and rebuilds the classic .lzma header with an
// unknown-size marker, since the stream is end-of-stream terminated.
func newZipLZMAReader(r io.Reader) io.ReadCloser {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return &errReadCloser{err: err}
	}
	propLen := int(binary.LittleEndian.Uint16(hdr[2:4]))
	if propLen != 5 {
		return &errReadCloser{err: fmt.Errorf("lzma entry: %d property bytes, want 5", propLen)}
	}
	props := make([]byte, propLen)
	if _, err := io.ReadFull(r, props); err != nil {
		return &errReadCloser{err: err}
	}

	classic := make([]byte, 0, classicLZMAHeaderSize)
	classic = append(classic, props...)
	for i := 0; i < 8; i++ {
		classic = append(classic, 0xFF)
	}
	lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(classic), r))
	if err != nil {
		return &errReadCloser{err: err}
	}
	return io.NopCloser(lr)
}

type errReadCloser struct{ err error }

func (e *errReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e *errReadCloser) Close() error             { return nil }

// classicLZMAHeaderSize is the .lzma header the lzma writer emits: 1
// properties byte, 4 bytes dictionary size, 8 bytes uncompressed size.
const classicLZMAHeaderSize = 13

// zipLZMAWriter adapts the classic .lzma stream to zip's LZMA framing:
// a 2-byte version marker, a little-endian uint16 properties length, the 5
// properties bytes, then the raw stream. The classic header's 8-byte
// uncompressed-size field is dropped; the zip entry header carries sizes.
type zipLZMAWriter struct {
	lz io.WriteCloser
}

func newZipLZMAWriter(w io.Writer) (io.WriteCloser, error) {
	filter := &lzmaHeaderFilter{w: w}
	lz, err := lzma.NewWriter(filter)
	if err != nil {
		return nil, err
	}
	return &zipLZMAWriter{lz: lz}, nil
}

func (zl *zipLZMAWriter) Write(p []byte) (int, error) { return zl.lz.Write(p) }
func (zl *zipLZMAWriter) Close() error                { return zl.lz.Close() }

// lzmaHeaderFilter buffers the first 13 bytes of the classic header and
// rewrites them into the zip framing before passing the stream through.
type lzmaHeaderFilter struct {
	w      io.Writer
	header []byte
}

func (f *lzmaHeaderFilter) Write(p []byte) (int, error) {
	total := len(p)

	if len(f.header) < classicLZMAHeaderSize {
		take := classicLZMAHeaderSize - len(f.header)
		if take > len(p) {
			take = len(p)
		}
		f.header = append(f.header, p[:take]...)
		p = p[take:]

		if len(f.header) == classicLZMAHeaderSize {
			// Version 9.4 of the reference SDK, then the 5 property bytes.
			framed := make([]byte, 0, 9)
			framed = append(framed, 9, 4)
			framed = binary.LittleEndian.AppendUint16(framed, 5)
			framed = append(framed, f.header[:5]...)
			if _, err := f.w.Write(framed); err != nil {
				return 0, err
			}
		}
		if len(p) == 0 {
			return total, nil
		}
	}

	if _, err := f.w.Write(p); err != nil {
		return 0, err
	}
	return total, nil
}
