package tag

import (
	"fmt"
	"io"

	gunsafe "github.com/grailbio/base/unsafe"
)

// Writer serializes tags in the per-sample text format: for each tag a
// header line
//
//	seq qualstring read_count fragment_count
//
// followed by one tab-indented line per surviving mate group
//
//	\t<mate_seq> <mate_read_count>
//
// (the empty single-end mate group is counted in fragment_count but prints
// no line), and one blank line after every cluster that produced at least
// one tag. Write errors are latched.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new Writer that writes tags to the underlying
// writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes one tag. An error is returned if the write failed.
func (w *Writer) Write(t *Tag) error {
	w.writeString(t.Seq, " ")
	w.writeBytes(t.Qual)
	if w.err == nil {
		_, w.err = fmt.Fprintf(w.w, " %d %d\n", t.ReadCount, t.FragmentCount)
	}
	for _, m := range t.Mates {
		if m.Seq == "" {
			continue
		}
		w.writeString("\t", m.Seq)
		if w.err == nil {
			_, w.err = fmt.Fprintf(w.w, " %d\n", m.Count)
		}
	}
	return w.err
}

// EndCluster writes the blank separator line marking a cluster boundary for
// downstream consumers.
func (w *Writer) EndCluster() error {
	w.writeString("\n")
	return w.err
}

// Err returns the first write error, if any.
func (w *Writer) Err() error { return w.err }

func (w *Writer) writeString(ss ...string) {
	for _, s := range ss {
		if w.err != nil {
			return
		}
		_, w.err = w.w.Write(gunsafe.StringToBytes(s))
	}
}

func (w *Writer) writeBytes(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}
