package textsieve

import (
	"bufio"
	"io"
	"os"
)

const scanBufferSize = 256 << 10

// LineScanner iterates the newline-delimited records of a stream. Unlike
// bufio.Scanner it has no maximum token size: a line longer than the internal
// buffer grows the pending record instead of failing, so arbitrarily long
// lines round-trip intact.
//
// Lines are delivered without their terminator (\n or \r\n); a final
// unterminated line is delivered as-is. The slice returned by Bytes is valid
// only until the next call to Scan.
type LineScanner struct {
	r       *bufio.Reader
	pending []byte
	line    []byte
	lineno  int
	err     error
	done    bool
}

// NewLineScanner returns a scanner over r.
func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{r: bufio.NewReaderSize(r, scanBufferSize)}
}

// Scan advances to the next line, returning false at end of input or on a
// read error (distinguish via Err).
func (s *LineScanner) Scan() bool {
	if s.done {
		return false
	}
	s.pending = s.pending[:0]
	for {
		frag, err := s.r.ReadSlice('\n')
		s.pending = append(s.pending, frag...)
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		s.done = true
		if err != io.EOF {
			s.err = err
			return false
		}
		if len(s.pending) == 0 {
			return false
		}
		break
	}

	line := s.pending
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	s.line = line
	s.lineno++
	return true
}

// Bytes returns the current line. Valid until the next Scan call.
func (s *LineScanner) Bytes() []byte { return s.line }

// Text returns the current line as a freshly allocated string.
func (s *LineScanner) Text() string { return string(s.line) }

// Line returns the 1-based number of the current line.
func (s *LineScanner) Line() int { return s.lineno }

// Err returns the first non-EOF error encountered while scanning.
func (s *LineScanner) Err() error { return s.err }

// OpenSequential opens path for reading and hints to the kernel that it will
// be consumed front to back. Every pipeline in this package reads its input
// exactly once in order, so the readahead hint is always appropriate.
func OpenSequential(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fadviseSequential(int(f.Fd()), 0, 0)
	return f, nil
}
