package textsieve

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	sieveerrors "github.com/textsieve/textsieve/errors"
)

// Open-reader accounting. The merge engine promises never to hold more than
// maxOpenChunks readers at once; the gauge makes that invariant observable.
var (
	openReaders    int
	openReadersMax int
)

// chunkReader lazily iterates a sealed chunk's records through a read-only
// memory map. Record slices point into the map and remain valid until close.
// The trailer checksum is verified once the final record has been consumed,
// so reading stays single-pass.
type chunkReader struct {
	c      *chunk
	mm     mmap.MMap
	data   []byte // record region between magic and trailer
	off    int
	read   uint64
	want   uint64 // records promised by the trailer
	sum    uint64 // checksum promised by the trailer
	digest *xxhash.Digest
}

// openChunk maps the chunk file and validates its framing.
func openChunk(c *chunk) (*chunkReader, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open chunk %d: %v", sieveerrors.ErrChunkStorage, c.ordinal, err)
	}
	// Per POSIX mmap(2), the descriptor may be closed once the map exists.
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat chunk %d: %v", sieveerrors.ErrChunkStorage, c.ordinal, err)
	}
	if stat.Size() < chunkHeaderSize+chunkTrailerSize {
		return nil, fmt.Errorf("%w: chunk %d is %d bytes", sieveerrors.ErrChunkTruncated, c.ordinal, stat.Size())
	}

	fadviseSequential(int(f.Fd()), 0, 0)
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap chunk %d: %v", sieveerrors.ErrChunkStorage, c.ordinal, err)
	}

	data := []byte(mm)
	if !bytes.Equal(data[:chunkHeaderSize], chunkMagic[:]) {
		return nil, errors.Join(
			fmt.Errorf("%w: chunk %d", sieveerrors.ErrChunkMagic, c.ordinal),
			mm.Unmap(),
		)
	}
	trailer := data[len(data)-chunkTrailerSize:]

	openReaders++
	if openReaders > openReadersMax {
		openReadersMax = openReaders
	}
	return &chunkReader{
		c:      c,
		mm:     mm,
		data:   data[chunkHeaderSize : len(data)-chunkTrailerSize],
		want:   binary.LittleEndian.Uint64(trailer[0:8]),
		sum:    binary.LittleEndian.Uint64(trailer[8:16]),
		digest: xxhash.New(),
	}, nil
}

// next returns the following record, or ok=false once the chunk is
// exhausted. Exhaustion triggers record-count and checksum verification.
func (r *chunkReader) next() (line []byte, ok bool, err error) {
	if r.off >= len(r.data) {
		if r.read != r.want {
			return nil, false, fmt.Errorf("%w: chunk %d holds %d of %d records",
				sieveerrors.ErrChunkTruncated, r.c.ordinal, r.read, r.want)
		}
		if r.digest.Sum64() != r.sum {
			return nil, false, fmt.Errorf("%w: chunk %d", sieveerrors.ErrChunkChecksum, r.c.ordinal)
		}
		return nil, false, nil
	}

	length, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		return nil, false, fmt.Errorf("%w: chunk %d: malformed record length at offset %d",
			sieveerrors.ErrChunkTruncated, r.c.ordinal, r.off)
	}
	start := r.off + n
	end := start + int(length)
	if end < start || end > len(r.data) {
		return nil, false, fmt.Errorf("%w: chunk %d: record overruns data at offset %d",
			sieveerrors.ErrChunkTruncated, r.c.ordinal, r.off)
	}
	r.digest.Write(r.data[r.off:end])
	r.off = end
	r.read++
	return r.data[start:end], true, nil
}

// close unmaps the chunk. Idempotent.
func (r *chunkReader) close() error {
	if r.mm == nil {
		return nil
	}
	mm := r.mm
	r.mm = nil
	r.data = nil
	openReaders--
	if err := mm.Unmap(); err != nil {
		return fmt.Errorf("%w: unmap chunk %d: %v", sieveerrors.ErrChunkStorage, r.c.ordinal, err)
	}
	return nil
}
