// Package reads provides a scanner and writer for demultiplexed,
// lexicographically sorted per-sample read streams. The format is one read
// per line, with space-separated fields:
//
//	r1seq r1qual [r2seq r2qual]
//
// Quality characters are Phred+33. Lines are expected to be sorted in
// ascending byte order of r1seq; sortedness is a precondition of the
// downstream clustering engine and is not validated here.
package reads

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalid is returned when a malformed read line is encountered.
var ErrInvalid = errors.New("invalid read line")

// A Read is one demultiplexed sequencer read, comprising the primary (R1)
// sequence and quality, and, for paired-end data, the mate (R2) sequence and
// quality. Mate fields are empty for single-end data.
type Read struct {
	Seq, Qual         string
	MateSeq, MateQual string
}

// Paired reports whether the read carries a mate sequence.
func (r *Read) Paired() bool { return r.MateSeq != "" }

// Scanner provides a convenient interface for reading sorted read streams.
// The Scan method fills the next read, returning a boolean indicating whether
// the read succeeded. Scanners are not threadsafe.
//
// Scanner validates the field count of each line but not field contents
// (e.g., seq/qual being of equal length, or the alphabet); such checks belong
// to the consumer.
type Scanner struct {
	b    *bufio.Scanner
	err  error
	line int
}

// NewScanner constructs a new Scanner that reads raw read lines from the
// provided reader.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{b: bufio.NewScanner(r)}
}

// Scan the next read into the provided read. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it never
// returns true again. Upon completion, the user should check the Err method
// to determine whether scanning stopped because of an error or because the
// end of the stream was reached. Blank lines are skipped.
func (s *Scanner) Scan(read *Read) bool {
	if s.err != nil {
		return false
	}
	for {
		if !s.b.Scan() {
			s.err = s.b.Err()
			return false
		}
		s.line++
		if len(s.b.Bytes()) == 0 {
			continue
		}
		fields := strings.Fields(s.b.Text())
		switch len(fields) {
		case 2:
			read.Seq, read.Qual = fields[0], fields[1]
			read.MateSeq, read.MateQual = "", ""
		case 4:
			read.Seq, read.Qual = fields[0], fields[1]
			read.MateSeq, read.MateQual = fields[2], fields[3]
		default:
			s.err = errors.Wrapf(ErrInvalid, "line %d: %d fields", s.line, len(fields))
			return false
		}
		return true
	}
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error { return s.err }
