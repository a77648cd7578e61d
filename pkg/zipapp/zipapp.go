// SPDX-License-Identifier: MPL-2.0

// Package zipapp reads archives produced by the bundler (or by Python's
// zipapp module): an optional shebang line followed by a zip stream. It
// answers the questions the inspection commands ask, which interpreter an
// archive declares, which files it carries and what its PKG-INFO says,
// without re-running the build pipeline.
package zipapp

import (
	"archive/zip"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"zipbundler/internal/archive"
)

// ErrNotArchive reports that a file is neither a zip stream nor a
// shebang-prefixed zip stream.
var ErrNotArchive = errors.New("not a zipapp archive")

// MetadataFileName is the metadata entry written at the archive root.
const MetadataFileName = "PKG-INFO"

// Archive is an open zipapp file.
type Archive struct {
	path        string
	interpreter string
	f           *os.File
	zr          *zip.Reader
}

// Open opens path, skips the shebang line when one is present and prepares
// the zip directory for reading. The caller must Close the archive.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	interpreter, offset, err := readShebang(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	sr := io.NewSectionReader(f, offset, info.Size()-offset)
	zr, err := zip.NewReader(sr, info.Size()-offset)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNotArchive, err)
	}
	archive.RegisterDecompressors(zr)

	return &Archive{path: path, interpreter: interpreter, f: f, zr: zr}, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.f.Close()
}

// Interpreter returns the shebang interpreter, or "" when the archive has
// no shebang line.
func (a *Archive) Interpreter() string {
	return a.interpreter
}

// Names returns every entry path in the archive, sorted.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the contents of one archive entry.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	rc, err := a.zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Metadata parses the archive's PKG-INFO into key/value pairs. Archives
// without a PKG-INFO entry return a nil map and no error.
func (a *Archive) Metadata() (map[string]string, error) {
	data, err := a.ReadFile(MetadataFileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	meta := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ": ")
		if !ok || key == "" {
			continue
		}
		meta[key] = value
	}
	return meta, sc.Err()
}

// Interpreter reports the interpreter named in an archive's shebang line,
// or "" when the archive carries none. The semantics match Python's
// zipapp.get_interpreter, including the latin-1 fallback for shebang bytes
// that are not valid UTF-8.
func Interpreter(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	interpreter, _, err := readShebang(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return interpreter, nil
}

// readShebang consumes an optional shebang line from the start of f and
// returns the decoded interpreter plus the offset where the zip stream
// begins. Files without a "#!" prefix yield "" and offset 0.
func readShebang(f *os.File) (string, int64, error) {
	var magic [2]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "", 0, nil // too short for a shebang, let zip parsing decide
		}
		return "", 0, err
	}
	if n < 2 || magic[0] != '#' || magic[1] != '!' {
		return "", 0, nil
	}

	br := bufio.NewReader(f)
	line, err := br.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return "", 0, err
	}
	offset := int64(2 + len(line))
	return decodeShebang(line), offset, nil
}

// decodeShebang trims the line and decodes it, falling back to latin-1 when
// the bytes are not valid UTF-8.
func decodeShebang(line []byte) string {
	line = bytes.TrimRight(line, "\r\n")
	line = bytes.TrimSpace(line)
	if utf8.Valid(line) {
		return string(line)
	}
	runes := make([]rune, len(line))
	for i, b := range line {
		runes[i] = rune(b)
	}
	return string(runes)
}
