// Package instruction parses the line-oriented instructions understood by the
// tally tool.
package instruction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInstruction is returned when a line carries a keyword that is
	// neither "record" nor "top".
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrMalformedLine is returned when a line or an argument lacks the
	// delimiter it requires.
	ErrMalformedLine = errors.New("malformed line")
)

const (
	keywordDelimiter = ":"
	recordDelimiter  = ","
)

// Kind identifies what an instruction asks the processor to do.
type Kind int

// Enumeration of the instruction kinds.
const (
	KindRecord Kind = iota
	KindTop
)

var kindKeywords = map[string]Kind{
	"record": KindRecord,
	"top":    KindTop,
}

// String returns the keyword of the kind.
func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindTop:
		return "top"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Instruction is one parsed input line.
type Instruction struct {
	Kind Kind
	Arg  string
}

// String formats the instruction back into its line form.
func (i Instruction) String() string {
	return i.Kind.String() + keywordDelimiter + i.Arg
}

// InvalidInstructionError reports the keyword that could not be recognized.
type InvalidInstructionError struct {
	Keyword string
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidInstruction, e.Keyword)
}

// Is makes the error match ErrInvalidInstruction.
func (e *InvalidInstructionError) Is(target error) bool {
	return target == ErrInvalidInstruction
}

// Parse splits a line on its first colon into a keyword and a raw argument.
func Parse(line string) (Instruction, error) {
	keyword, arg, found := strings.Cut(line, keywordDelimiter)
	if !found {
		return Instruction{}, fmt.Errorf(
			"%w: missing %q in %q", ErrMalformedLine, keywordDelimiter, line)
	}

	kind, ok := kindKeywords[keyword]
	if !ok {
		return Instruction{}, &InvalidInstructionError{Keyword: keyword}
	}

	return Instruction{Kind: kind, Arg: arg}, nil
}

// SplitRecordArg splits the argument of a record instruction on its first
// comma into the artist and the song.
func SplitRecordArg(arg string) (artist, song string, err error) {
	artist, song, found := strings.Cut(arg, recordDelimiter)
	if !found {
		return "", "", fmt.Errorf(
			"%w: missing %q in record argument %q",
			ErrMalformedLine, recordDelimiter, arg)
	}

	return artist, song, nil
}
