package baseline

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/example/dotprod/internal/failure"
)

var byteOrder = binary.NativeEndian

// chunkBytes bounds the scratch buffer used to stream a vector, so encoding
// and decoding never hold a second copy of the payload.
const chunkBytes = 64 << 10

func writeFloats(w io.Writer, v []float64) error {
	buf := make([]byte, min(len(v)*8, chunkBytes))
	for len(v) > 0 {
		k := min(len(v), len(buf)/8)
		for i, x := range v[:k] {
			byteOrder.PutUint64(buf[i*8:], math.Float64bits(x))
		}
		if _, err := w.Write(buf[:k*8]); err != nil {
			return err
		}
		v = v[k:]
	}
	return nil
}

func readFloats(r io.Reader, v []float64) error {
	buf := make([]byte, min(len(v)*8, chunkBytes))
	for len(v) > 0 {
		k := min(len(v), len(buf)/8)
		if _, err := io.ReadFull(r, buf[:k*8]); err != nil {
			return err
		}
		for i := range k {
			v[i] = math.Float64frombits(byteOrder.Uint64(buf[i*8:]))
		}
		v = v[k:]
	}
	return nil
}

// Encode writes rec to w in the baseline layout.
func Encode(w io.Writer, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if err := binary.Write(w, byteOrder, rec.N); err != nil {
		return failure.Wrap(failure.KindIO, "write dimension", err)
	}
	if err := writeFloats(w, rec.V1); err != nil {
		return failure.Wrap(failure.KindIO, "write vector1", err)
	}
	if err := writeFloats(w, rec.V2); err != nil {
		return failure.Wrap(failure.KindIO, "write vector2", err)
	}
	if err := binary.Write(w, byteOrder, rec.Sequential); err != nil {
		return failure.Wrap(failure.KindIO, "write sequential result", err)
	}

	return nil
}

// Decode reads a record from r. The dimension is read first and the vectors
// are allocated through AllocVectors before their payload is consumed.
func Decode(r io.Reader) (*Record, error) {
	n, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	v1, v2, err := AllocVectors(n)
	if err != nil {
		return nil, err
	}

	rec := &Record{N: n, V1: v1, V2: v2}
	if err := readFloats(r, rec.V1); err != nil {
		return nil, failure.Wrap(failure.KindIO, "read vector1", eofAsUnexpected(err))
	}
	if err := readFloats(r, rec.V2); err != nil {
		return nil, failure.Wrap(failure.KindIO, "read vector2", eofAsUnexpected(err))
	}
	if err := binary.Read(r, byteOrder, &rec.Sequential); err != nil {
		return nil, failure.Wrap(failure.KindIO, "read sequential result", eofAsUnexpected(err))
	}

	return rec, nil
}

// WriteFile writes rec to path, replacing any existing file.
func WriteFile(path string, rec *Record) (err error) {
	if err := rec.Validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return failure.Wrap(failure.KindIO, "create "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = failure.Wrap(failure.KindIO, "close "+path, cerr)
		}
	}()

	bw := bufio.NewWriterSize(f, 1<<20)
	if err := Encode(bw, rec); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return failure.Wrap(failure.KindIO, "flush "+path, err)
	}

	return nil
}

// ReadFile loads the record stored at path. The file size must match the
// dimension in its header exactly; this is checked before any vector memory
// is allocated.
func ReadFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failure.Wrap(failure.KindIO, "open "+path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, failure.Wrap(failure.KindIO, "stat "+path, err)
	}

	n, err := ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := checkSize(n, info.Size()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, failure.Wrap(failure.KindIO, "seek "+path, err)
	}

	rec, err := Decode(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return rec, nil
}

// ReadHeader reads only the dimension field.
func ReadHeader(r io.Reader) (int64, error) {
	var n int64
	if err := binary.Read(r, byteOrder, &n); err != nil {
		return 0, failure.Wrap(failure.KindIO, "read dimension", eofAsUnexpected(err))
	}
	if n < 1 {
		return 0, failure.Newf(failure.KindIO, "corrupt header: dimension %d", n)
	}
	return n, nil
}

func checkSize(n, actual int64) error {
	want, ok := RecordSize(n)
	if !ok {
		return failure.Newf(failure.KindIO, "corrupt header: dimension %d too large", n)
	}
	if actual < want {
		return failure.Newf(failure.KindIO, "truncated file: %d bytes, want %d for dimension %d", actual, want, n)
	}
	if actual > want {
		return failure.Newf(failure.KindIO, "trailing data: %d bytes, want %d for dimension %d", actual, want, n)
	}
	return nil
}

func eofAsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
