package textsieve

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	sieveerrors "github.com/textsieve/textsieve/errors"
)

// Sealed chunk file layout:
//
//	[magic 4B][records: uvarint length + payload, repeated][count 8B][xxhash64 8B]
//
// The checksum covers everything between magic and trailer, computed
// streamingly while the data is hot. The format is process-local: chunks
// never outlive the run that wrote them.
const (
	chunkHeaderSize  = 4
	chunkTrailerSize = 16
	chunkBufferSize  = 256 << 10
)

var chunkMagic = [chunkHeaderSize]byte{'T', 'S', 'C', '1'}

// chunk is a sealed, sorted, disk-resident segment of the input. The ordinal
// records creation order and breaks ties during merging, which is what makes
// the overall sort stable.
type chunk struct {
	path    string
	ordinal int
	records uint64
}

// remove deletes the chunk's backing file. Idempotent.
func (c *chunk) remove() error {
	if c.path == "" {
		return nil
	}
	path := c.path
	c.path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove chunk %d: %v", sieveerrors.ErrChunkStorage, c.ordinal, err)
	}
	return nil
}

// chunkWriter streams records into a new chunk file. Lines must be appended
// in the chunk's sort order; seal writes the trailer and produces the chunk.
// On any failure the partial file is removed before the error propagates.
type chunkWriter struct {
	f       *os.File
	w       *bufio.Writer
	digest  *xxhash.Digest
	path    string
	ordinal int
	count   uint64
	lenBuf  [binary.MaxVarintLen64]byte
}

func newChunkWriter(dir string, ordinal int) (*chunkWriter, error) {
	path := filepath.Join(dir, fmt.Sprintf("chunk-%06d", ordinal))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create chunk %d: %v", sieveerrors.ErrChunkStorage, ordinal, err)
	}
	cw := &chunkWriter{
		f:       f,
		w:       bufio.NewWriterSize(f, chunkBufferSize),
		digest:  xxhash.New(),
		path:    path,
		ordinal: ordinal,
	}
	if _, err := cw.w.Write(chunkMagic[:]); err != nil {
		return nil, cw.fail(err)
	}
	return cw, nil
}

// append writes one record frame and folds it into the running checksum.
func (cw *chunkWriter) append(line []byte) error {
	n := binary.PutUvarint(cw.lenBuf[:], uint64(len(line)))
	if _, err := cw.w.Write(cw.lenBuf[:n]); err != nil {
		return cw.fail(err)
	}
	if _, err := cw.w.Write(line); err != nil {
		return cw.fail(err)
	}
	// Digest writes never fail.
	cw.digest.Write(cw.lenBuf[:n])
	cw.digest.Write(line)
	cw.count++
	return nil
}

// seal writes the trailer, flushes, and closes the file, returning the
// finished chunk.
func (cw *chunkWriter) seal() (*chunk, error) {
	var trailer [chunkTrailerSize]byte
	binary.LittleEndian.PutUint64(trailer[0:8], cw.count)
	binary.LittleEndian.PutUint64(trailer[8:16], cw.digest.Sum64())
	if _, err := cw.w.Write(trailer[:]); err != nil {
		return nil, cw.fail(err)
	}
	if err := cw.w.Flush(); err != nil {
		return nil, cw.fail(err)
	}
	f := cw.f
	cw.f = nil
	if err := f.Close(); err != nil {
		return nil, errors.Join(
			fmt.Errorf("%w: close chunk %d: %v", sieveerrors.ErrChunkStorage, cw.ordinal, err),
			os.Remove(cw.path),
		)
	}
	return &chunk{path: cw.path, ordinal: cw.ordinal, records: cw.count}, nil
}

// abort discards the partially written chunk. Idempotent; safe after seal.
func (cw *chunkWriter) abort() error {
	if cw.f == nil {
		return nil
	}
	f := cw.f
	cw.f = nil
	return errors.Join(f.Close(), os.Remove(cw.path))
}

func (cw *chunkWriter) fail(err error) error {
	return errors.Join(
		fmt.Errorf("%w: write chunk %d: %v", sieveerrors.ErrChunkStorage, cw.ordinal, err),
		cw.abort(),
	)
}

// writeChunk seals one fully sorted in-memory window as a chunk file.
func writeChunk(dir string, ordinal int, lines [][]byte) (*chunk, error) {
	cw, err := newChunkWriter(dir, ordinal)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := cw.append(line); err != nil {
			return nil, err
		}
	}
	return cw.seal()
}
