// Package output provides the sink that query responses are appended to.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrIsDirectory is returned when the output path names a directory.
var ErrIsDirectory = errors.New("output is a directory")

// A Sink accepts response lines.
type Sink interface {
	// WriteLine appends the line and a line terminator to the sink.
	WriteLine(line string) error
}

// FileSink appends lines to a file. The file is opened for each line and
// closed before WriteLine returns, so no handle outlives a write.
type FileSink struct {
	path string
	perm fs.FileMode
}

// NewFileSink creates a FileSink writing to path. Any existing file at path is
// removed and an empty file is created in its place.
func NewFileSink(path string) (*FileSink, error) {
	s := &FileSink{
		path: path,
		perm: 0o644,
	}

	err := s.recreate()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the path of the file that the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) recreate() error {
	info, err := os.Lstat(s.path)
	if err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, s.path)
	}

	err = os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing previous output %s: %w", s.path, err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.perm)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", s.path, err)
	}

	return f.Close()
}

// WriteLine appends the line to the file.
func (s *FileSink) WriteLine(line string) (err error) {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.perm)
	if err != nil {
		return fmt.Errorf("opening output %s: %w", s.path, err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing output %s: %w", s.path, closeErr)
		}
	}()

	_, err = f.WriteString(line + "\n")
	if err != nil {
		return fmt.Errorf("writing output %s: %w", s.path, err)
	}

	return nil
}

var _ Sink = (*FileSink)(nil)
