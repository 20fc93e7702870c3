package reads

import "io"

var (
	space   = []byte{' '}
	newline = []byte{'\n'}
)

// Writer writes reads in the sorted-stream line format. Write errors are
// latched; the first error is reported by every subsequent Write.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new Writer that writes reads to the underlying
// writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the read r as one line. An error is returned if the write
// failed.
func (w *Writer) Write(r *Read) error {
	w.writeField(r.Seq, false)
	w.writeField(r.Qual, true)
	if r.Paired() {
		w.writeField(r.MateSeq, true)
		w.writeField(r.MateQual, true)
	}
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
	return w.err
}

func (w *Writer) writeField(s string, sep bool) {
	if w.err != nil {
		return
	}
	if sep {
		if _, w.err = w.w.Write(space); w.err != nil {
			return
		}
	}
	_, w.err = io.WriteString(w.w, s)
}
