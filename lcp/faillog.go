package lcp

import (
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

// failureMagic and failureVersion identify a dump produced by
// FailureLogger.Dump, so a later inspection tool can tell an old dump
// format from a new one before trying to parse it.
var failureMagic = [8]byte{'L', 'C', 'P', 'F', 'A', 'I', 'L', 'v'}

const failureVersion = 1

// FailureLogger writes the M, q pair behind a failed solve to a binary
// dump an offline tool can replay, the same role log_failure's
// lemke.Mq.<digits>.fail files played: a solver failure in the middle of
// a simulation run is much easier to diagnose from a captured system than
// from a log line alone.
type FailureLogger struct {
	w io.Writer
}

// NewFailureLogger wraps w, usually an *os.File opened for a session's
// failure dumps.
func NewFailureLogger(w io.Writer) *FailureLogger {
	return &FailureLogger{w: w}
}

// Dump writes magic + version, M's dimensions, M's row-major entries, q's
// entries, and a trailing CRC32 of everything written before it.
func (f *FailureLogger) Dump(M *mat.Dense, q []float64) error {
	var buf []byte
	buf = append(buf, failureMagic[:]...)
	buf = append(buf, byte(failureVersion))

	rows, cols := M.Dims()
	buf = appendUint32(buf, uint32(rows))
	buf = appendUint32(buf, uint32(cols))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			buf = appendFloat64(buf, M.At(i, j))
		}
	}
	buf = appendUint32(buf, uint32(len(q)))
	for _, v := range q {
		buf = appendFloat64(buf, v)
	}

	checksum := crc32.ChecksumIEEE(buf)
	buf = appendUint32(buf, checksum)

	_, err := f.w.Write(buf)
	return err
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendFloat64(buf []byte, v float64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	return append(buf, tmp[:]...)
}
