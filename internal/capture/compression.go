package capture

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// Compression identifies the on-disk encoding of a capture file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

var (
	// Gzip magic bytes: 1f 8b
	gzipMagic = []byte{0x1f, 0x8b}
	// Bzip2 magic bytes: 42 5a 68 ("BZh")
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	// XZ magic bytes: fd 37 7a 58 5a 00
	xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression sniffs the encoding from a stream's leading bytes. XZ
// carries the longest signature at six bytes; shorter inputs match whatever
// prefix they can.
func DetectCompression(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(header, bzip2Magic):
		return CompressionBzip2
	default:
		return CompressionNone
	}
}

// openDecompressing opens path and, when its leading bytes carry a known
// compression signature, layers the matching decompressor on top. The file
// is opened once; detection peeks without consuming.
func openDecompressing(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(f)
	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("sniffing %s: %w", path, err)
	}

	switch DetectCompression(header) {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip capture %s: %w", path, err)
		}
		return &decompressingReadCloser{reader: zr, file: f}, nil

	case CompressionBzip2:
		return &decompressingReadCloser{reader: bzip2.NewReader(br), file: f}, nil

	case CompressionXZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening xz capture %s: %w", path, err)
		}
		return &decompressingReadCloser{reader: xr, file: f}, nil

	default:
		return &decompressingReadCloser{reader: br, file: f}, nil
	}
}

// decompressingReadCloser pairs a decode layer with the file it drains.
type decompressingReadCloser struct {
	reader io.Reader
	file   *os.File
}

func (d *decompressingReadCloser) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressingReadCloser) Close() error {
	if closer, ok := d.reader.(io.Closer); ok {
		closer.Close()
	}
	return d.file.Close()
}
