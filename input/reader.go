// Package input streams the instruction file line by line.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strings"
)

// ErrNotFound is returned when the input file does not exist. It matches
// fs.ErrNotExist.
var ErrNotFound = fmt.Errorf("input file not found: %w", fs.ErrNotExist)

// ErrLineTooLong is returned when a line is longer than the limit set with
// WithMaxLineSize.
var ErrLineTooLong = errors.New("input line too long")

// A Reader produces the trimmed lines of a file. Nothing is read until the
// sequence returned by Lines is iterated, and only one line is held in memory
// at a time. Lines can be of any length unless a limit is set.
type Reader struct {
	path        string
	maxLineSize int
}

// NewReader creates a Reader for the file at path.
func NewReader(path string) *Reader {
	return &Reader{
		path: path,
	}
}

// WithMaxLineSize sets the longest line, in bytes and without the line
// terminator, the reader accepts.
func (r *Reader) WithMaxLineSize(size int) *Reader {
	if size <= 0 {
		panic("max line size must be positive")
	}

	r.maxLineSize = size

	return r
}

// Path returns the path of the file being read.
func (r *Reader) Path() string {
	return r.path
}

// Lines returns the lines of the file with the surrounding whitespace removed.
//
// Every call opens the file again, so the sequence can be iterated more than
// once. If the file cannot be opened or read, the sequence yields the error
// and stops.
func (r *Reader) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := os.Open(r.path)
		if err != nil {
			yield("", r.openError(err))
			return
		}
		defer f.Close()

		br := bufio.NewReader(f)

		for {
			line, err := r.readLine(br)

			switch {
			case err == nil:
				if !yield(strings.TrimSpace(line), nil) {
					return
				}
			case errors.Is(err, io.EOF):
				// The last line may lack a terminator.
				if line != "" {
					yield(strings.TrimSpace(line), nil)
				}

				return
			default:
				yield("", fmt.Errorf("reading %s: %w", r.path, err))
				return
			}
		}
	}
}

// readLine reads up to and including the next '\n'. Fragments are joined
// until the terminator is found, so the line is not bounded by the buffer.
func (r *Reader) readLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder

	for {
		frag, err := br.ReadSlice('\n')

		n := len(frag)
		if err == nil {
			n--
		}

		if r.maxLineSize > 0 && sb.Len()+n > r.maxLineSize {
			return "", fmt.Errorf("%w: more than %d bytes",
				ErrLineTooLong, r.maxLineSize)
		}

		sb.Write(frag)

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		return sb.String(), err
	}
}

func (r *Reader) openError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, r.path)
	}

	return fmt.Errorf("opening %s: %w", r.path, err)
}
