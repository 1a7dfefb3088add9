package tracing

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how trace files are compressed.
type Compression int

// A list of supported compressions.
const (
	CompressionNone Compression = iota
	CompressionSnappy
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionSnappy:
		return "snappy"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// Extension returns the suffix appended to compressed files.
func (c Compression) Extension() string {
	switch c {
	case CompressionSnappy:
		return ".sz"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ParseCompression converts a name into a Compression. An empty name means
// no compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "snappy":
		return CompressionSnappy, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return CompressionNone, fmt.Errorf("unsupported compression %q", name)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewCompressedWriter wraps w so that everything written is compressed.
// Closing the returned writer flushes the compressor but does not close w.
func NewCompressedWriter(w io.Writer, c Compression) io.WriteCloser {
	switch c {
	case CompressionSnappy:
		return snappy.NewBufferedWriter(w)
	case CompressionLZ4:
		return lz4.NewWriter(w)
	default:
		return nopWriteCloser{w}
	}
}

// NewDecompressedReader reads what NewCompressedWriter wrote.
func NewDecompressedReader(r io.Reader, c Compression) io.Reader {
	switch c {
	case CompressionSnappy:
		return snappy.NewReader(r)
	case CompressionLZ4:
		return lz4.NewReader(r)
	default:
		return r
	}
}
